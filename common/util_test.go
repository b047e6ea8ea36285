//go:build unit
// +build unit

package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAsset(t *testing.T) {
	layout, err := GetAsset("surface17_layout.toml")
	assert.Nil(t, err)
	assert.Contains(t, layout, "name = \"surface-17\"")
	assert.Contains(t, layout, "data_qubits = 9")
}

func TestGetAssetNotFound(t *testing.T) {
	_, err := GetAsset("no_such_asset.toml")
	assert.Error(t, err)
}

func TestPlaninJsonString(t *testing.T) {
	jsonString := "{\n  \"name\": \"wako\",\n  \"qubits\"}"
	expected := "{\"name\":\"wako\",\"qubits\"}"

	actual := PlainJsonString(jsonString)
	assert.Equal(t, expected, actual)
}

func TestIsDirWritable(t *testing.T) {
	assert.Nil(t, IsDirWritable(t.TempDir()))
	assert.Error(t, IsDirWritable("/no/such/dir"))
}
