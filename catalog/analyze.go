package catalog

import (
	"fmt"

	"github.com/sghaida/compbridge/compose"
	"github.com/sghaida/compbridge/di"
)

// Report is the result of Analyze.
type Report struct {
	Parts []PartReport `json:"parts"`

	// Unsatisfied lists ExactlyOne imports no export in the catalog matches.
	Unsatisfied []Finding `json:"unsatisfied,omitempty"`

	// Ambiguous lists single-valued imports more than one export matches.
	Ambiguous []Finding `json:"ambiguous,omitempty"`
}

// PartReport describes one part.
type PartReport struct {
	Name    string         `json:"name"`
	Exports []string       `json:"exports"`
	Imports []ImportReport `json:"imports"`
}

// ImportReport describes one import and how many exports match it.
type ImportReport struct {
	Import       string `json:"import"`
	Contract     string `json:"contract"`
	Cardinality  string `json:"cardinality"`
	Prerequisite bool   `json:"prerequisite"`
	Matches      int    `json:"matches"`
	Supported    bool   `json:"supported"`
}

// Finding names a part and one of its imports.
type Finding struct {
	Part   string `json:"part"`
	Import string `json:"import"`
}

// OK reports whether every ExactlyOne import is matched and no single-valued
// import is ambiguous.
func (r Report) OK() bool { return len(r.Unsatisfied) == 0 && len(r.Ambiguous) == 0 }

// Analyze matches every contract import of cat against the exports of cat.
// Exports registered elsewhere (host components, other catalogs) are not
// considered.
func Analyze(cat compose.Catalog) Report {
	var r Report
	if cat == nil {
		return r
	}
	parts := cat.Parts()

	var exports []*compose.ExportDefinition
	for _, p := range parts {
		if p != nil {
			exports = append(exports, p.ExportDefinitions()...)
		}
	}

	for _, p := range parts {
		if p == nil {
			continue
		}
		pr := PartReport{Name: nameOf(p)}
		for _, e := range p.ExportDefinitions() {
			id, err := e.Identity()
			if err != nil {
				pr.Exports = append(pr.Exports, e.String()+" (invalid)")
				continue
			}
			pr.Exports = append(pr.Exports, id.String())
		}

		for _, imp := range p.ImportDefinitions() {
			ir := ImportReport{
				Import:       imp.String(),
				Cardinality:  imp.ImportCardinality().String(),
				Prerequisite: imp.Prerequisite(),
			}
			ci, ok := imp.(*compose.ContractImport)
			if ok {
				ir.Supported = true
				if id, err := ci.Identity(); err == nil {
					ir.Contract = id.String()
				}
				for _, e := range exports {
					if ci.IsMatch(e) {
						ir.Matches++
					}
				}
				f := Finding{Part: pr.Name, Import: ir.Import}
				switch {
				case ir.Matches == 0 && ci.Cardinality == compose.ExactlyOne:
					r.Unsatisfied = append(r.Unsatisfied, f)
				case ir.Matches > 1 && ci.Cardinality != compose.ZeroOrMore && !wrapped(ci):
					r.Ambiguous = append(r.Ambiguous, f)
				}
			}
			pr.Imports = append(pr.Imports, ir)
		}
		r.Parts = append(r.Parts, pr)
	}
	return r
}

// wrapped reports whether a single wrapper receives the import; the bridge
// then takes the first match.
func wrapped(ci *compose.ContractImport) bool {
	_, ok := di.WrapperFor(ci.TargetType)
	return ok
}

func nameOf(p compose.PartDefinition) string {
	if n, ok := p.(interface{ Name() string }); ok {
		return n.Name()
	}
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", p)
}
