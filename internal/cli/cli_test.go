package cli

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	root := NewRootCommand()
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"--data-dir", dir}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, t.TempDir(), "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "habitpet")
}

func TestThirdEntryHatchesPetAndPersists(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "food", "Oatmeal", "350", "--protein", "12")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Oatmeal (350 kcal)")
	assert.Contains(t, out, "Pet: egg")

	out, err = run(t, dir, "exercise", "--intensity", "medium")
	require.NoError(t, err)
	assert.Contains(t, out, "Exercise (medium intensity) (-200 kcal, 45 min)")
	assert.Contains(t, out, "Pet: egg")

	out, err = run(t, dir, "food", "Apple", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Pet: weak")

	// Reopening evaluates again: weak with an entry today becomes healthy.
	out, err = run(t, dir, "today")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 250 kcal")
	assert.Contains(t, out, "Pet: healthy")
	assert.Contains(t, out, "Streak: 1")
}

func TestToggleHidesEntry(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "food", "Toast", "200")
	require.NoError(t, err)
	id := regexp.MustCompile(`\) (\S+)\n`).FindStringSubmatch(out)
	require.Len(t, id, 2)

	_, err = run(t, dir, "toggle", id[1])
	require.NoError(t, err)

	out, err = run(t, dir, "today")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 0 kcal")
	assert.NotContains(t, out, "Toast")

	out, err = run(t, dir, "today", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Toast")

	_, err = run(t, dir, "toggle", "missing")
	assert.Error(t, err)
}

func TestClearKeepsProfileAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "profile", "set", "--weight", "154", "--height", "70", "--age", "30", "--activity", "Sedentary", "--goal", "cut")
	require.NoError(t, err)
	_, err = run(t, dir, "food", "Toast", "200")
	require.NoError(t, err)

	_, err = run(t, dir, "clear")
	require.NoError(t, err)

	out, err := run(t, dir, "today")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 0 kcal")
	assert.NotContains(t, out, "Toast")

	out, err = run(t, dir, "profile")
	require.NoError(t, err)
	assert.Contains(t, out, "BMR: 1998")
}

func TestProfileSetAndReset(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, dir, "profile", "set", "--weight", "154", "--height", "70", "--age", "30", "--activity", "Sedentary", "--goal", "Cut")
	require.NoError(t, err)
	assert.Contains(t, out, "BMR: 1998")

	out, err = run(t, dir, "profile")
	require.NoError(t, err)
	assert.Contains(t, out, "BMR: 1998")

	out, err = run(t, dir, "profile", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "BMR: 0")

	_, err = run(t, dir, "profile", "set", "--activity", "Extreme")
	assert.Error(t, err)
}

func TestBMR(t *testing.T) {
	out, err := run(t, t.TempDir(), "bmr", "154", "70", "--age", "30")
	require.NoError(t, err)
	assert.Equal(t, "1998\n", out)

	out, err = run(t, t.TempDir(), "--strategy", "goal-offset", "bmr", "154", "70", "--age", "30", "--goal", "bulk")
	require.NoError(t, err)
	assert.Equal(t, "2328\n", out)

	_, err = run(t, t.TempDir(), "--strategy", "keto", "bmr", "154", "70")
	assert.Error(t, err)
}

func TestValidation(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "food", "Toast", "abc")
	assert.Error(t, err)
	_, err = run(t, dir, "exercise")
	assert.Error(t, err)
	_, err = run(t, dir, "exercise", "--intensity", "extreme")
	assert.Error(t, err)
}
