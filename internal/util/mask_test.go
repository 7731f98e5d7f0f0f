package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://auth:s3cr3t@db:5432/authcore?sslmode=disable": "postgres://auth:***@db:5432/authcore?sslmode=disable",
		"auth:s3cr3t@tcp(db:3306)/authcore?parseTime=true":        "auth:***@tcp(db:3306)/authcore?parseTime=true",
		"postgres://db:5432/authcore":                             "postgres://db:5432/authcore",
		"mysql://root:p%40ss@db/authcore":                         "mysql://root:***@db/authcore",
		"file:authcore.db":                                        "file:authcore.db",
	}
	for in, want := range cases {
		assert.Equal(t, want, MaskDSN(in), in)
	}
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "***", MaskSecret("abc"))
	assert.Equal(t, "abcd…", MaskSecret("abcdefgh"))
}

func TestMaskDSN_NoEscapedMask(t *testing.T) {
	got := MaskDSN("postgres://auth:s3cr3t@db:5432/authcore")
	assert.NotContains(t, got, "%2A")
	assert.NotContains(t, got, "s3cr3t")
}
