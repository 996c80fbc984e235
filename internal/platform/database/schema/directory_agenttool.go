package schema

// AgentToolTable represents the 'directory.agenttool' table
type AgentToolTable struct {
	Table string
	ID    string
	Name  string
	Slug  string
	URL   string
}

// AgentTool is the schema definition for directory.agenttool
var AgentTool = AgentToolTable{
	Table: "directory.agenttool",
	ID:    "id",
	Name:  "name",
	Slug:  "slug",
	URL:   "url",
}

// AgentToolPromptTable represents the 'directory.agenttoolprompt' association table
type AgentToolPromptTable struct {
	Table    string
	PromptID string
	ToolID   string
	SetupURL string
}

// AgentToolPrompt is the schema definition for directory.agenttoolprompt
var AgentToolPrompt = AgentToolPromptTable{
	Table:    "directory.agenttoolprompt",
	PromptID: "promptid",
	ToolID:   "toolid",
	SetupURL: "setupurl",
}
