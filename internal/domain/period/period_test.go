package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPeriod_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Period
		wantErr error
	}{
		{"fiction", Period{Month: 3, Year: 2025, Category: CategoryFiction}, nil},
		{"non-fiction december", Period{Month: 12, Year: 2025, Category: CategoryNonFiction}, nil},
		{"month zero", Period{Month: 0, Year: 2025, Category: CategoryFiction}, ErrInvalidMonth},
		{"month thirteen", Period{Month: 13, Year: 2025, Category: CategoryFiction}, ErrInvalidMonth},
		{"year too early", Period{Month: 1, Year: 1999, Category: CategoryFiction}, ErrInvalidYear},
		{"poetry", Period{Month: 1, Year: 2025, Category: "poetry"}, ErrInvalidCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOf(t *testing.T) {
	loc := time.FixedZone("WAT", 3600)
	m, y := Of(time.Date(2025, 1, 1, 0, 30, 0, 0, loc))
	assert.Equal(t, 12, m)
	assert.Equal(t, 2024, y)
}
