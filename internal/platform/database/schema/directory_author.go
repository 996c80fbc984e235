package schema

// AuthorTable represents the 'directory.author' table
type AuthorTable struct {
	Table             string
	ID                string
	Name              string
	Slug              string
	PublicDescription string
	Link              string
	AvatarURL         string
	Verified          string
	Highlighted       string
	CreatedAt         string
}

// Author is the schema definition for directory.author
var Author = AuthorTable{
	Table:             "directory.author",
	ID:                "id",
	Name:              "name",
	Slug:              "slug",
	PublicDescription: "publicdescription",
	Link:              "link",
	AvatarURL:         "avatarurl",
	Verified:          "verified",
	Highlighted:       "highlighted",
	CreatedAt:         "createdat",
}

// Columns lists the selectable columns in scan order.
func (t AuthorTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.PublicDescription, t.Link, t.AvatarURL, t.Verified, t.Highlighted, t.CreatedAt}
}
