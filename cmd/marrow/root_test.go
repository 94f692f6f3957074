package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const bipedScript = `
(def spine (joint-module "spine" :nodes 3 :length 6 :plane :xy :offset 1))
(def leg (hinge-module "leg" :length 8 :plane :yz :offset 2
                       :mirror (mirror :rotation :behaviour)))
(connect leg spine :node 0 :kind :hierarchical)
`

func writeScript(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "biped.marrow")
	require.NoError(t, os.WriteFile(path, []byte(bipedScript), 0o644))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestEvalCommand(t *testing.T) {
	out, err := runCommand(t, "eval", writeScript(t))
	require.NoError(t, err)
	require.Contains(t, out, "JointNode__spine")
	require.Contains(t, out, "HingeNode__leg")
	require.Contains(t, out, "HingeNode__leg_mirror")
	require.Contains(t, out, "parent=JointNode__spine[0] (hierarchical)")
}

func TestEvalCommandWritesCollection(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "biped.yaml")

	_, err := runCommand(t, "eval", writeScript(t), "-o", outPath)
	require.NoError(t, err)
	defer func() { evalOut = "" }()

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "kind: HingeNode")

	// The written collection must itself load and compile.
	out, err := runCommand(t, "compile", outPath)
	require.NoError(t, err)
	require.Contains(t, out, "JointNode__spine")
}

func TestCompileCommand(t *testing.T) {
	out, err := runCommand(t, "compile", writeScript(t))
	require.NoError(t, err)

	// Three spine joints, three per leg side.
	require.Contains(t, out, "JointNode__spine_joint0")
	require.Contains(t, out, "HingeNode__leg_joint2")
	require.Contains(t, out, "HingeNode__leg_mirror_joint0")
}

func TestValidateCommandOK(t *testing.T) {
	out, err := runCommand(t, "validate", writeScript(t))
	require.NoError(t, err)
	require.Contains(t, out, "ok: 3 module(s)")
}

func TestValidateCommandFindings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	src := `
version: 2
modules:
  - id: aaaa
    kind: JointNode
    name: spine
    nodes: 3
    length: 6
    plane: +XY
    schemaVersion: 1
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	_, err := runCommand(t, "validate", path)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "finding"))
}

func TestMeshCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arm.marrow")
	src := `(joint-module "arm" :nodes 2 :length 4 :proxy (proxy :bones true))`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	outPath := filepath.Join(dir, "arm.stl")
	out, err := runCommand(t, "mesh", path, "-o", outPath)
	require.NoError(t, err)
	defer func() { meshOut = "" }()

	require.Contains(t, out, "JointNode__arm_joint0")
	require.Contains(t, out, "meshed 1 solid(s)")

	// Binary STL: 80-byte header + 4-byte count + triangle records.
	info, err := os.Stat(outPath)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(84))
}

func TestMeshCommandWithoutProxyGeometry(t *testing.T) {
	_, err := runCommand(t, "mesh", writeScript(t))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no proxy geometry")
}

func TestEvalCommandBadScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.marrow")
	require.NoError(t, os.WriteFile(path, []byte(`(joint-module "x" :nodes 3 :length 0)`), 0o644))

	_, err := runCommand(t, "eval", path)
	require.Error(t, err)
}
