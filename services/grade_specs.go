package services

import "strings"

// GradeSpecs is the saved specification set for one material grade.
type GradeSpecs struct {
	Chemistry  []ChemistryItem  `json:"chemistry"`
	Mechanical []MechanicalItem `json:"mechanical"`
}

// Apply copies the saved specs onto matching chemistry and mechanical lines.
// Lines are matched by element or parameter name, ignoring case and padding;
// observations and hide flags are left alone.
func (g GradeSpecs) Apply(chem []ChemistryItem, mech []MechanicalItem) ([]ChemistryItem, []MechanicalItem) {
	chem = append([]ChemistryItem(nil), chem...)
	mech = append([]MechanicalItem(nil), mech...)

	for _, s := range g.Chemistry {
		for i := range chem {
			if sameName(chem[i].Element, s.Element) {
				chem[i].Spec = s.Spec
				break
			}
		}
	}
	for _, s := range g.Mechanical {
		for i := range mech {
			if sameName(mech[i].Parameter, s.Parameter) {
				mech[i].Spec = s.Spec
				break
			}
		}
	}
	return chem, mech
}

func sameName(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
