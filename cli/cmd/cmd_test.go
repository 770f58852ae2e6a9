package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carereviews/api/server"
)

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "submission.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheck_Compliant(t *testing.T) {
	path := writeFile(t, `{
		"name": "Jane Wilson",
		"dob": "1988-04-02",
		"condition": "Asthma",
		"review": "Call 555-123-4567 if you need a refill reminder.",
		"rating": 5,
		"verifiedPurchase": true,
		"date": "2024-06-15"
	}`)

	out, err := runCommand(t, "", "check", path)
	require.NoError(t, err)

	var resp server.CheckResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Compliant)
	require.NotNil(t, resp.Review)
	assert.Equal(t, "J.W.", resp.Review.PatientInitials)
	assert.Equal(t, "Call [PHONE] if you need a refill reminder.", resp.Review.Review)
	assert.NotContains(t, out, "Jane")
}

func TestCheck_FromStdinRejected(t *testing.T) {
	in := `{"name":"Jane Wilson","dob":"1988-04-02","condition":"Asthma","review":"short","rating":9,"verifiedPurchase":false}`
	out, err := runCommand(t, in, "check", "-")
	assert.ErrorIs(t, err, errNotCompliant)
	assert.Contains(t, out, `"rating"`)
	assert.Contains(t, out, `"review"`)
}

func TestCheck_UnknownFieldRejected(t *testing.T) {
	path := writeFile(t, `{"name":"Jane Wilson","ssn":"123-45-6789"}`)
	_, err := runCommand(t, "", "check", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid submission")
}

func TestToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	out, err := runCommand(t, "", "token", "--subject", "mod-alice")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)
}
