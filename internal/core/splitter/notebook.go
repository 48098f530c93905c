package splitter

import (
	"encoding/json"
	"strings"
)

// notebookCell is the subset of the Jupyter nbformat cell we care about.
// Source may be a single string or a list of line strings.
type notebookCell struct {
	CellType string          `json:"cell_type"`
	Source   json.RawMessage `json:"source"`
}

type notebook struct {
	Cells []notebookCell `json:"cells"`
}

// FlattenNotebook extracts the code and markdown cells of an .ipynb file
// and joins their sources into one plain-text document. Outputs, raw
// cells and metadata are dropped.
func FlattenNotebook(raw string) (string, error) {
	var nb notebook
	if err := json.Unmarshal([]byte(raw), &nb); err != nil {
		return "", err
	}

	var parts []string
	for _, cell := range nb.Cells {
		if cell.CellType != "code" && cell.CellType != "markdown" {
			continue
		}
		src, err := cellSource(cell.Source)
		if err != nil {
			return "", err
		}
		parts = append(parts, src)
	}
	return strings.Join(parts, "\n"), nil
}

func cellSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", err
	}
	return strings.Join(lines, ""), nil
}
