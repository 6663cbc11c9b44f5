package model

// IngestStage is a step of the ingestion run
type IngestStage int

const (
	StageInitialize IngestStage = iota
	StageReset
	StageLoad
	StageSplit
	StageStore
	StageDone
)

var stageLabels = map[IngestStage]string{
	StageInitialize: "Initializing components",
	StageReset:      "Resetting vector store",
	StageLoad:       "Loading data",
	StageSplit:      "Splitting text into chunks",
	StageStore:      "Adding chunks to vector database",
	StageDone:       "Docs added to vector database",
}

func (s IngestStage) String() string {
	if label, ok := stageLabels[s]; ok {
		return label
	}
	return "Unknown stage"
}
