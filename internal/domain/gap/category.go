package gap

import (
	"strings"
	"unicode"

	"github.com/okian/akreditasi/internal/domain/model"
)

// keywords maps criterion-name keywords to categories. Entries are matched in
// order against word starts, so "kerjasama penelitian" is governance and
// "tenaga kependidikan" is human resources rather than education.
var keywords = []struct {
	category model.Category
	words    []string
}{
	{model.CategoryGovernance, []string{"visi", "misi", "tata pamong", "tata kelola", "kerjasama", "kerja sama"}},
	{model.CategoryStudents, []string{"mahasiswa"}},
	{model.CategoryHumanResources, []string{"dosen", "sdm", "sumber daya manusia", "tenaga kependidikan"}},
	{model.CategoryFinance, []string{"keuangan", "sarana", "prasarana"}},
	{model.CategoryOutcomes, []string{"luaran", "capaian", "outcome", "dampak", "impact"}},
	{model.CategoryResearch, []string{"penelitian"}},
	{model.CategoryCommunityService, []string{"pengabdian"}},
	{model.CategoryEducation, []string{"pendidikan", "kurikulum", "pembelajaran"}},
}

// InferCategory guesses a category from a free-text criterion name. It is a
// migration helper for rows that predate the category column; runtime code
// reads Criterion.Category.
func InferCategory(name string) model.Category {
	text := " " + normalize(name) + " "
	for _, k := range keywords {
		for _, w := range k.words {
			if strings.Contains(text, " "+w) {
				return k.category
			}
		}
	}
	return model.CategoryUncategorized
}

func normalize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
