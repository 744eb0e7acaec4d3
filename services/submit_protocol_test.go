package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmartSubmit_SelectorStrategy(t *testing.T) {
	disabled := button("Submit")
	disabled.disabled = true
	enabled := button("")
	page := newFakePage().
		on(`button[type="submit"]`, disabled).
		on(`input[type="submit"]`, enabled)

	strategy, ok := SmartSubmit(page)
	assert.True(t, ok)
	assert.Equal(t, "selector", strategy)
	assert.Zero(t, disabled.clicks)
	assert.Equal(t, 1, enabled.clicks)
	assert.True(t, enabled.forced, "selector clicks are forced")
	assert.Zero(t, page.enters)
}

func TestSmartSubmit_FallsBackToEnter(t *testing.T) {
	page := newFakePage()

	strategy, ok := SmartSubmit(page)
	assert.True(t, ok)
	assert.Equal(t, "enter", strategy)
	assert.Equal(t, 1, page.enters)
}

func TestSmartSubmit_ButtonScan(t *testing.T) {
	cancel := button("Cancel")
	apply := button("  Apply for this job ")
	page := newFakePage().on(buttonScanSelector, cancel, apply)
	page.enterErr = errors.New("no focused element")

	strategy, ok := SmartSubmit(page)
	assert.True(t, ok)
	assert.Equal(t, "button-scan", strategy)
	assert.Zero(t, cancel.clicks)
	assert.Equal(t, 1, apply.clicks)
}

func TestSmartSubmit_NothingWorks(t *testing.T) {
	broken := button("Submit")
	broken.clickErr = errors.New("detached")
	page := newFakePage().on(buttonScanSelector, broken)
	page.enterErr = errors.New("no focused element")

	strategy, ok := SmartSubmit(page)
	assert.False(t, ok)
	assert.Empty(t, strategy)
}
