package airtable

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadflow/leadflow/pkg/domain"
)

func TestResolveBase_ReturnsFirstBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meta/bases", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"bases": []map[string]any{
				{"id": "appPrimary", "name": "CRM"},
				{"id": "appSecondary", "name": "Other"},
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	baseID, err := client.ResolveBase(context.Background(), "token-1")
	require.NoError(t, err)
	assert.Equal(t, "appPrimary", baseID)
}

func TestResolveBase_NoBases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"bases": []any{}})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.ResolveBase(context.Background(), "token-1")
	require.ErrorIs(t, err, domain.ErrProvider)
}

func TestListLeads_FilterFormula(t *testing.T) {
	var gotFormula string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appBase/Demo%20Table", r.URL.EscapedPath())
		gotFormula = r.URL.Query().Get("filterByFormula")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{
				{
					"id": "rec1",
					"fields": map[string]any{
						"Name":     "Acme",
						"Website":  "https://acme.test",
						"Enriched": false,
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	leads, err := client.ListLeads(context.Background(), "token-1", "appBase", domain.LeadFilter{Unenriched: true})
	require.NoError(t, err)

	assert.Equal(t, "NOT({Enriched})", gotFormula)
	require.Len(t, leads, 1)
	assert.Equal(t, "rec1", leads[0].ID)
	assert.Equal(t, "Acme", leads[0].Name)
	assert.False(t, leads[0].Enriched)
}

func TestCreateLead_GeneratesUUIDAndDecodesRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var body struct {
			Records []struct {
				Fields map[string]any `json:"fields"`
			} `json:"records"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Records, 1)

		fields := body.Records[0].Fields
		assert.Equal(t, "Acme", fields["Name"])
		assert.NotEmpty(t, fields["UUID"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{
				{"id": "recNew", "fields": fields},
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	created, err := client.CreateLead(context.Background(), "token-1", "appBase", domain.Lead{
		Name:     "Acme",
		Website:  "https://acme.test",
		Industry: "SaaS",
	})
	require.NoError(t, err)
	assert.Equal(t, "recNew", created.ID)
	assert.Equal(t, "Acme", created.Name)
}

func TestUpdateLead_PatchesRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/appBase/Demo%20Table/rec1", r.URL.EscapedPath())

		var body struct {
			Fields map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Hot", body.Fields["Score"])
		assert.Equal(t, float64(9), body.Fields["Numerical Score"])

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	err := client.UpdateLead(context.Background(), "token-1", "appBase", domain.Lead{
		ID:           "rec1",
		Name:         "Acme",
		Rating:       domain.LeadRatingHot,
		NumericScore: 9,
	})
	require.NoError(t, err)
}

func TestUpdateLead_MissingRecordID(t *testing.T) {
	client := NewClient()

	err := client.UpdateLead(context.Background(), "token-1", "appBase", domain.Lead{Name: "Acme"})
	require.ErrorIs(t, err, domain.ErrProvider)
}

func TestGetICP_ParsesPersona(t *testing.T) {
	var gotFormula string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appBase/Personas", r.URL.EscapedPath())
		gotFormula = r.URL.Query().Get("filterByFormula")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"records": []map[string]any{
				{
					"id": "recPersona",
					"fields": map[string]any{
						"Name":               "Mid-market SaaS",
						"Target Industries":  "SaaS, Fintech",
						"Company Size Range": "50-500",
						"Job Titles":         "VP Sales, Head of Growth",
						"Pain Points":        "manual outreach, low reply rates",
						"Use Cases":          "sales automation",
					},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	icp, err := client.GetICP(context.Background(), "token-1", "appBase", "user-1")
	require.NoError(t, err)

	assert.Equal(t, `{User ID} = "user-1"`, gotFormula)
	assert.Equal(t, "user-1", icp.UserID)
	assert.Equal(t, []string{"SaaS", "Fintech"}, icp.TargetIndustries)
	assert.Equal(t, "50-500", icp.CompanySizeRange)
	assert.Equal(t, []string{"manual outreach", "low reply rates"}, icp.PainPoints)
	assert.Equal(t, []string{"sales automation"}, icp.UseCases)
}

func TestGetICP_NoPersona(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"records": []any{}})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.GetICP(context.Background(), "token-1", "appBase", "user-1")
	require.ErrorIs(t, err, domain.ErrProvider)
}

func TestDoJSON_Non2xxWrapsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"type":"INVALID_VALUE_FOR_COLUMN"}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.ListLeads(context.Background(), "token-1", "appBase", domain.LeadFilter{})
	require.ErrorIs(t, err, domain.ErrProvider)
	assert.Contains(t, err.Error(), "422")
}

func TestFilterFormula(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.LeadFilter
		want   string
	}{
		{
			name:   "empty",
			filter: domain.LeadFilter{},
			want:   "",
		},
		{
			name:   "unenriched",
			filter: domain.LeadFilter{Unenriched: true},
			want:   "NOT({Enriched})",
		},
		{
			name:   "enriched unscored",
			filter: domain.LeadFilter{EnrichedUnscored: true},
			want:   `AND({Enriched}, {Score} = "")`,
		},
		{
			name:   "hot warm unpersonalized",
			filter: domain.LeadFilter{HotWarmUnpersonalized: true},
			want:   `AND(OR({Score} = "Hot", {Score} = "Warm"), {Personalized Opener} = "")`,
		},
		{
			name:   "record ids",
			filter: domain.LeadFilter{IDs: []string{"rec1", "rec2"}},
			want:   `OR(RECORD_ID() = "rec1", RECORD_ID() = "rec2")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filterFormula(tt.filter))
		})
	}
}

func TestValidateLeadFields(t *testing.T) {
	err := validateLeadFields(map[string]any{
		"Name":            "Acme",
		"Score":           "Hot",
		"Numerical Score": 9,
		"Enriched":        true,
	})
	require.NoError(t, err)

	err = validateLeadFields(map[string]any{"Website": "https://acme.test"})
	require.Error(t, err, "missing Name must be rejected")

	err = validateLeadFields(map[string]any{"Name": "Acme", "Score": "Blazing"})
	require.Error(t, err, "unknown rating must be rejected")
}
