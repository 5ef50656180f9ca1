package teacher

import (
	"testing"

	"github.com/volatiletech/null/v8"
)

func TestEditStudent_Validate(t *testing.T) {
	tests := []struct {
		name    string
		edit    EditStudent
		wantErr bool
	}{
		{name: "id only", edit: EditStudent{StudentID: 1}},
		{name: "name only", edit: EditStudent{StudentID: 1, Name: "Ana"}},
		{name: "valid period", edit: EditStudent{StudentID: 1, Period: null.IntFrom(5)}},
		{name: "missing student id", edit: EditStudent{Period: null.IntFrom(5)}, wantErr: true},
		{name: "period zero", edit: EditStudent{StudentID: 1, Period: null.IntFrom(0)}, wantErr: true},
		{name: "period too high", edit: EditStudent{StudentID: 1, Period: null.IntFrom(99)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.edit.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
