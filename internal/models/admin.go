package models

// AdminSession holds the read-only display values of the signed-in admin.
// An empty Name means no session.
type AdminSession struct {
	Name  string
	Phone string
	Line  string
}

const placeholder = "-"

func (a AdminSession) DisplayName() string  { return orPlaceholder(a.Name) }
func (a AdminSession) DisplayPhone() string { return orPlaceholder(a.Phone) }
func (a AdminSession) DisplayLine() string  { return orPlaceholder(a.Line) }

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}
