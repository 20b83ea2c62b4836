package sysattr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFile_InlineCommentIPCHandler(t *testing.T) {
	src := []byte(`#[handler]
#[allow(non_snake_case)] // matches frontend convention
pub async fn process_data(inputData: Bytes) -> Result<Bytes, String> { }
`)
	res, err := Extractor{}.ParseFile("src/commands.rs", src)
	require.NoError(t, err)
	require.Len(t, res.IPCHandlers, 1)
	h := res.IPCHandlers[0]
	assert.Equal(t, "process_data", h.Name)
	assert.Equal(t, "process_data", h.RawSymbol)
	assert.Equal(t, 3, h.Line)
}

func TestParseFile_CommentedOutHandler_NoRecord(t *testing.T) {
	src := []byte(`// #[handler]
// #[allow(non_snake_case)] // matches frontend convention
// pub async fn process_data(inputData: Bytes) -> Result<Bytes, String> { }
`)
	res, err := Extractor{}.ParseFile("src/commands.rs", src)
	require.NoError(t, err)
	assert.Empty(t, res.IPCHandlers)
}

func TestParseFile_BlockCommentBetweenAttributes(t *testing.T) {
	src := []byte(`#[handler]
/* block comment
   spanning multiple lines */
pub fn greet(name: String) -> String { name }
`)
	res, err := Extractor{}.ParseFile("src/commands.rs", src)
	require.NoError(t, err)
	require.Len(t, res.IPCHandlers, 1)
	assert.Equal(t, "greet", res.IPCHandlers[0].Name)
}

func TestParseFile_RenameAttribute(t *testing.T) {
	src := []byte(`#[handler(rename = "doStuff")]
pub fn do_stuff() {}
`)
	res, err := Extractor{}.ParseFile("src/commands.rs", src)
	require.NoError(t, err)
	require.Len(t, res.IPCHandlers, 1)
	assert.Equal(t, "doStuff", res.IPCHandlers[0].Name)
}

func TestParseFile_RenameAllCamelCase(t *testing.T) {
	src := []byte(`#[handler(rename_all = "camelCase")]
pub fn fetch_user_profile() {}
`)
	res, err := Extractor{}.ParseFile("src/commands.rs", src)
	require.NoError(t, err)
	require.Len(t, res.IPCHandlers, 1)
	assert.Equal(t, "fetchUserProfile", res.IPCHandlers[0].Name)
}

func TestParseFile_RenameAllSnakeCaseIsIdentity(t *testing.T) {
	src := []byte(`#[handler(rename_all = "snake_case")]
pub fn fetch_user_profile() {}
`)
	res, err := Extractor{}.ParseFile("src/commands.rs", src)
	require.NoError(t, err)
	require.Len(t, res.IPCHandlers, 1)
	assert.Equal(t, "fetch_user_profile", res.IPCHandlers[0].Name)
}

func TestParseFile_NonAttributeCodeBreaksBlock(t *testing.T) {
	src := []byte(`#[handler]
let x = 5;
pub fn not_a_handler() {}
`)
	res, err := Extractor{}.ParseFile("src/commands.rs", src)
	require.NoError(t, err)
	assert.Empty(t, res.IPCHandlers)
}

func TestParseFile_UseAndPubItems(t *testing.T) {
	src := []byte(`use std::collections::HashMap;
pub struct State {}
pub const VERSION: &str = "1.0";
`)
	res, err := Extractor{}.ParseFile("src/lib.rs", src)
	require.NoError(t, err)
	require.Len(t, res.Imports, 1)
	assert.Equal(t, "std::collections::HashMap", res.Imports[0].Specifier)
	require.Len(t, res.Exports, 2)
	assert.Equal(t, "State", res.Exports[0].Name)
	assert.Equal(t, "VERSION", res.Exports[1].Name)
}
