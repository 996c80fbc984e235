package schema

// TagTable represents the 'directory.tag' table
type TagTable struct {
	Table string
	ID    string
	Name  string
}

// Tag is the schema definition for directory.tag
var Tag = TagTable{
	Table: "directory.tag",
	ID:    "id",
	Name:  "name",
}

// PromptTagTable represents the 'directory.prompttag' association table
type PromptTagTable struct {
	Table    string
	PromptID string
	TagID    string
}

// PromptTag is the schema definition for directory.prompttag
var PromptTag = PromptTagTable{
	Table:    "directory.prompttag",
	PromptID: "promptid",
	TagID:    "tagid",
}
