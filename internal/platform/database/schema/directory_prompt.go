package schema

// PromptTable represents the 'directory.prompt' table
type PromptTable struct {
	Table                 string
	ID                    string
	Title                 string
	Slug                  string
	Prompt                string
	Description           string
	AdditionalInformation string
	AuthorID              string
	Type                  string
	CreatedAt             string
}

// Prompt is the schema definition for directory.prompt
var Prompt = PromptTable{
	Table:                 "directory.prompt",
	ID:                    "id",
	Title:                 "title",
	Slug:                  "slug",
	Prompt:                "prompt",
	Description:           "description",
	AdditionalInformation: "additionalinformation",
	AuthorID:              "authorid",
	Type:                  "type",
	CreatedAt:             "createdat",
}

// Columns lists the selectable columns in scan order.
func (t PromptTable) Columns() []string {
	return []string{t.ID, t.Title, t.Slug, t.Prompt, t.Description, t.AdditionalInformation, t.AuthorID, t.Type, t.CreatedAt}
}
