// Package model provides the data structures shared between the pipeline
// package and its options. It defines the step descriptors and the option
// contract implemented by features such as the drawer and the measure.
package model
