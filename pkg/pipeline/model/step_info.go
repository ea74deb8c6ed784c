package model

// StepType classifies a step for pipeline options such as the drawer.
type StepType string

const (
	RootStepType    StepType = "root"
	NormalStepType  StepType = "step"
	ForEachStepType StepType = "foreach"
)

// StartStep anchors every pipeline graph.
var StartStep = &StepInfo{Type: RootStepType, Name: "start"}

// StepInfo describes one registered step.
type StepInfo struct {
	Type StepType
	Name string
}
