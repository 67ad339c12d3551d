package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
)

var (
	endDateText = "must be after start_date"

	uniqueStudentsTag  = "uniquestudents"
	uniqueStudentsText = "a student can only be marked once per day"
)

// InitValidators registers the attendance validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(bulkMarkStructValidation, BulkMark{})
	core.RegisterCustomTranslation(validate, translator, uniqueStudentsTag, uniqueStudentsText)
}

// bulkMarkStructValidation checks that every student appears once in a BulkMark.
func bulkMarkStructValidation(sl validator.StructLevel) {
	bm, ok := sl.Current().Interface().(BulkMark)
	if !ok {
		return
	}
	seen := make(map[int]struct{}, len(bm.Marks))
	for _, m := range bm.Marks {
		if _, dup := seen[m.StudentID]; dup {
			sl.ReportError(bm.Marks, "records", "Marks", uniqueStudentsTag, "")
			return
		}
		seen[m.StudentID] = struct{}{}
	}
}
