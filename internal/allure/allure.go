package allure

const StageFinished = "finished"

const (
	StatusPass   = "passed"
	StatusFail   = "failed"
	StatusSkip   = "skipped"
	StatusBroken = "broken"
)

const (
	LabelSuite      = "suite"
	LabelParent     = "parentSuite"
	LabelTestClass  = "testClass"
	LabelTestMethod = "testMethod"
	LabelHost       = "host"
	LabelLanguage   = "language"
	LabelFramework  = "framework"
	LabelSeverity   = "severity"
)

type Test struct {
	UUID          string        `json:"uuid"`
	TestCaseID    string        `json:"testCaseId"`
	HistoryID     string        `json:"historyId"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Status        string        `json:"status"`
	StatusDetails StatusDetails `json:"statusDetails"`
	Stage         string        `json:"stage"`
	Steps         []Step        `json:"steps"`
	Start         int64         `json:"start"`
	Stop          int64         `json:"stop"`
	FullName      string        `json:"fullName"`
	Parameters    []Parameter   `json:"parameters"`
	Labels        []Label       `json:"labels"`
	Attachments   []Attachment  `json:"attachments"`
}

// StatusDetails carries the failure message and the flaky marker Allure
// uses for tests that passed only after a retry.
type StatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
	Flaky   bool   `json:"flaky,omitempty"`
}

type Step struct {
	Name        string       `json:"name"`
	Status      string       `json:"status"`
	Stage       string       `json:"stage"`
	Steps       []Step       `json:"steps"`
	Attachments []Attachment `json:"attachments"`
	Parameters  []Parameter  `json:"parameters"`
	Start       int64        `json:"start"`
	Stop        int64        `json:"stop"`
}

type Parameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type Attachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}
