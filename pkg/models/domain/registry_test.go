package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRegistryURL(t *testing.T) {
	cases := map[string]string{
		"https://111111111111.dkr.ecr.us-west-2.amazonaws.com":  "111111111111.dkr.ecr.us-west-2.amazonaws.com",
		"http://111111111111.dkr.ecr.us-west-2.amazonaws.com/":  "111111111111.dkr.ecr.us-west-2.amazonaws.com",
		"111111111111.DKR.ECR.US-WEST-2.AMAZONAWS.COM":          "111111111111.dkr.ecr.us-west-2.amazonaws.com",
		" https://222222222222.dkr.ecr.eu-west-1.amazonaws.com": "222222222222.dkr.ecr.eu-west-1.amazonaws.com",
		"registry.example.com/":                                 "registry.example.com",
	}
	for raw, want := range cases {
		assert.Equal(t, want, CanonicalRegistryURL(raw), "input %q", raw)
	}
}

func TestAccountIDFromRegistryURL(t *testing.T) {
	assert.Equal(t, "111111111111",
		AccountIDFromRegistryURL("https://111111111111.dkr.ecr.us-west-2.amazonaws.com"))
	assert.Equal(t, "111111111111",
		AccountIDFromRegistryURL("111111111111.dkr.ecr.us-west-2.amazonaws.com/"))

	// Non-ECR hosts carry no account linkage.
	assert.Equal(t, "", AccountIDFromRegistryURL("registry.example.com"))
	assert.Equal(t, "", AccountIDFromRegistryURL("abc.dkr.ecr.us-west-2.amazonaws.com"))
	assert.Equal(t, "", AccountIDFromRegistryURL(""))
}

func TestECRRegistryURL(t *testing.T) {
	assert.Equal(t, "111111111111.dkr.ecr.us-west-2.amazonaws.com",
		ECRRegistryURL("111111111111", "us-west-2"))
}
