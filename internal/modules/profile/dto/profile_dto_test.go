package dto

import (
	"encoding/json"
	"testing"

	"anoa.com/devconnector/internal/entity"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want SkillList
	}{
		{"comma separated", `{"skills":"a, b, c"}`, SkillList{" a", " b", " c"}},
		{"no spaces", `{"skills":"go,sql"}`, SkillList{" go", " sql"}},
		{"single", `{"skills":"HTML"}`, SkillList{" HTML"}},
		{"array kept as given", `{"skills":["go"," sql"]}`, SkillList{"go", " sql"}},
		{"blank string", `{"skills":"   "}`, nil},
		{"empty array", `{"skills":[]}`, nil},
		{"null", `{"skills":null}`, nil},
		{"absent", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in ProfileInput
			require.NoError(t, json.Unmarshal([]byte(tt.body), &in))
			if diff := cmp.Diff(tt.want, in.Skills); diff != "" {
				t.Errorf("skills mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSkillList_RejectsNumbers(t *testing.T) {
	var in ProfileInput
	err := json.Unmarshal([]byte(`{"skills":42}`), &in)

	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "skills", typeErr.Field)
}

func TestNewProfileResponse(t *testing.T) {
	userID := uuid.New()
	p := &entity.Profile{
		ID:     uuid.New(),
		UserID: userID,
		User:   &entity.User{ID: userID, Name: "Ada", Avatar: "//a", Email: "ada@example.com"},
		Status: "Developer",
	}

	res := NewProfileResponse(p)
	assert.Equal(t, OwnerResponse{ID: userID, Name: "Ada", Avatar: "//a"}, res.User)
	assert.NotNil(t, res.Skills)
	assert.NotNil(t, res.Experience)
	assert.NotNil(t, res.Education)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ada@example.com")
	assert.Contains(t, string(raw), `"experience":[]`)
}
