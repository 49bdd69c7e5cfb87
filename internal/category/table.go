package category

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Others is the catch-all bucket for unmatched extensions.
const Others = "Others"

// Category pairs a bucket name with the extensions it claims.
type Category struct {
	Name       string
	Extensions []string
}

// Table maps lowercase extensions to bucket names.
type Table struct {
	categories []Category
	index      map[string]string
}

// ErrDuplicateExtension reports an extension claimed by two categories.
var ErrDuplicateExtension = errors.New("extension claimed by more than one category")

var defaultCategories = []Category{
	{Name: "Documents", Extensions: []string{".pdf", ".doc", ".docx", ".txt", ".rtf", ".odt", ".pages"}},
	{Name: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".svg", ".webp"}},
	{Name: "Videos", Extensions: []string{".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm", ".mkv"}},
	{Name: "Audio", Extensions: []string{".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma"}},
	{Name: "Code", Extensions: []string{".py", ".js", ".html", ".css", ".java", ".cpp", ".c", ".php", ".rb", ".go", ".json", ".xml"}},
	{Name: "Archives", Extensions: []string{".zip", ".rar", ".7z", ".tar", ".gz", ".bz2"}},
	{Name: "Spreadsheets", Extensions: []string{".xls", ".xlsx", ".csv", ".ods"}},
	{Name: "Presentations", Extensions: []string{".ppt", ".pptx", ".odp"}},
	{Name: "Executables", Extensions: []string{".exe", ".msi", ".deb", ".rpm", ".dmg", ".app"}},
}

// Default returns the built-in table.
func Default() *Table {
	table, err := New(defaultCategories...)
	if err != nil {
		panic(fmt.Sprintf("category: default table invalid: %v", err))
	}
	return table
}

// New builds a table from the given categories, preserving their order.
// Extensions are lowercased and given a leading dot when missing.
func New(categories ...Category) (*Table, error) {
	table := &Table{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]string),
	}
	seenNames := make(map[string]struct{}, len(categories))
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		folded := strings.ToLower(name)
		if _, dup := seenNames[folded]; dup {
			return nil, fmt.Errorf("category %q defined twice", name)
		}
		seenNames[folded] = struct{}{}

		exts := make([]string, 0, len(cat.Extensions))
		for _, raw := range cat.Extensions {
			ext := NormalizeExtension(raw)
			if ext == "" {
				continue
			}
			if owner, taken := table.index[ext]; taken {
				if owner == name {
					continue
				}
				return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateExtension, ext, owner, name)
			}
			table.index[ext] = name
			exts = append(exts, ext)
		}
		table.categories = append(table.categories, Category{Name: name, Extensions: exts})
	}
	return table, nil
}

// Extend merges extra categories into base and returns a new table. A name that
// matches an existing category (case-insensitively) adds extensions to it; new
// names are title-cased and appended in sorted order.
func Extend(base *Table, extra map[string][]string) (*Table, error) {
	if base == nil {
		base = Default()
	}
	merged := base.Categories()
	position := make(map[string]int, len(merged))
	for i, cat := range merged {
		position[strings.ToLower(cat.Name)] = i
	}

	titler := cases.Title(language.Und)
	for _, rawName := range slices.Sorted(maps.Keys(extra)) {
		name := strings.TrimSpace(rawName)
		if strings.EqualFold(name, Others) {
			return nil, fmt.Errorf("category %q is reserved for unmatched files", Others)
		}
		if i, ok := position[strings.ToLower(name)]; ok {
			merged[i].Extensions = append(merged[i].Extensions, extra[rawName]...)
			continue
		}
		name = titler.String(name)
		position[strings.ToLower(name)] = len(merged)
		merged = append(merged, Category{Name: name, Extensions: append([]string(nil), extra[rawName]...)})
	}
	return New(merged...)
}

// CategoryFor returns the bucket for ext, or Others when no category claims it.
func (t *Table) CategoryFor(ext string) string {
	if t == nil {
		return Others
	}
	if name, ok := t.index[strings.ToLower(ext)]; ok {
		return name
	}
	return Others
}

// Names returns bucket names in table order followed by Others.
func (t *Table) Names() []string {
	if t == nil {
		return []string{Others}
	}
	names := make([]string, 0, len(t.categories)+1)
	for _, cat := range t.categories {
		names = append(names, cat.Name)
	}
	return append(names, Others)
}

// Categories returns a copy of the table's categories in order.
func (t *Table) Categories() []Category {
	if t == nil {
		return nil
	}
	out := make([]Category, len(t.categories))
	for i, cat := range t.categories {
		out[i] = Category{Name: cat.Name, Extensions: append([]string(nil), cat.Extensions...)}
	}
	return out
}

// NormalizeExtension lowercases ext and ensures a single leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	ext = strings.TrimLeft(ext, ".")
	if ext == "" {
		return ""
	}
	return "." + ext
}

func validateName(name string) error {
	switch {
	case name == "":
		return errors.New("category name is empty")
	case strings.EqualFold(name, Others):
		return fmt.Errorf("category %q is reserved for unmatched files", Others)
	case name == "." || name == "..", strings.ContainsAny(name, `/\`):
		return fmt.Errorf("category name %q is not a valid directory name", name)
	}
	return nil
}
