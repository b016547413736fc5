package catalog

import (
	"github.com/avoss/donorserve/internal/utils"
	"github.com/charmbracelet/log"
)

// ContributorType describes one donor classification.
type ContributorType struct {
	Code       string `toml:"code"`
	Name       string `toml:"name"`
	Definition string `toml:"definition"`
	Government bool   `toml:"government"`
}

// UnknownType is resolved for records whose type code has no descriptor.
var UnknownType = ContributorType{
	Code:       "UNK",
	Name:       "Unknown",
	Definition: "Contributor type could not be resolved",
	Government: false,
}

// builtinTypes is the default classification table. A TOML file can
// replace it at load time, see LoadTypes.
var builtinTypes = []ContributorType{
	{Code: "GOV", Name: "National Government", Definition: "Central government bodies and state agencies", Government: true},
	{Code: "MUL", Name: "Multilateral Organization", Definition: "Intergovernmental and multilateral institutions", Government: true},
	{Code: "PUB", Name: "Other Public Sector", Definition: "Local government, public universities and state enterprises", Government: true},
	{Code: "NGO", Name: "Non-Governmental Organization", Definition: "National and international NGOs and civil society groups", Government: false},
	{Code: "FND", Name: "Private Foundation", Definition: "Philanthropic foundations and trusts", Government: false},
	{Code: "PRI", Name: "Private Sector", Definition: "Corporations and other commercial entities", Government: false},
	{Code: "ACA", Name: "Academic Institution", Definition: "Private universities and research institutes", Government: false},
}

// TypeSet resolves contributor type codes to their descriptors.
type TypeSet struct {
	byCode map[string]ContributorType
}

// NewTypeSet builds a TypeSet from the builtin classification table.
func NewTypeSet() *TypeSet {
	return newTypeSet(builtinTypes)
}

func newTypeSet(types []ContributorType) *TypeSet {
	byCode := make(map[string]ContributorType, len(types))
	for _, ct := range types {
		code := utils.Fold(ct.Code)
		if _, dup := byCode[code]; dup {
			log.Warnf("Duplicate contributor type code %q, keeping first definition", ct.Code)
			continue
		}
		byCode[code] = ct
	}
	return &TypeSet{byCode: byCode}
}

// LoadTypes reads a contributor type table from a TOML file, replacing
// the builtin table. The file holds a [[types]] array.
func LoadTypes(path string) (*TypeSet, error) {
	var doc struct {
		Types []ContributorType `toml:"types"`
	}
	if err := utils.LoadTOMLFile(path, &doc); err != nil {
		return nil, err
	}
	if len(doc.Types) == 0 {
		log.Warnf("No contributor types found in %s, using builtin table", path)
		return NewTypeSet(), nil
	}
	return newTypeSet(doc.Types), nil
}

// Resolve returns the descriptor for a type code, or UnknownType when
// the code has no entry. The second return reports whether it resolved.
func (ts *TypeSet) Resolve(code string) (ContributorType, bool) {
	ct, ok := ts.byCode[utils.Fold(code)]
	if !ok {
		return UnknownType, false
	}
	return ct, true
}

// Len returns the number of known contributor types.
func (ts *TypeSet) Len() int {
	return len(ts.byCode)
}
