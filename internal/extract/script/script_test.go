package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_TopLevelExportsAndImports(t *testing.T) {
	src := []byte(`
import os
from collections import OrderedDict

def greet(name):
    return f"hi {name}"

class Greeter:
    pass

_private = 1
`)
	res, err := Extractor{}.ParseFile("pkg/greet.py", src)
	require.NoError(t, err)

	var names []string
	for _, e := range res.Exports {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "greet")
	assert.Contains(t, names, "Greeter")
	assert.NotContains(t, names, "_private")

	require.Len(t, res.Imports, 2)
}

func TestParseDunderAll_RestrictsExports(t *testing.T) {
	all := parseDunderAll(`__all__ = ["greet"]

def greet(): pass
def helper(): pass
`)
	assert.True(t, all["greet"])
	assert.False(t, all["helper"])
}
