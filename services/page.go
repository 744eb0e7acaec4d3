package services

import "time"

// Bounded waits used across the engine. No page operation is allowed to
// block longer than NavigationTimeout.
const (
	NavigationTimeout = 30 * time.Second
	ClickTimeout      = 5 * time.Second
	ProbeTimeout      = 1 * time.Second
	ControlTimeout    = 2 * time.Second
	VerifyTimeout     = 2 * time.Second

	SettleDelay      = 2 * time.Second
	StepDelay        = 1500 * time.Millisecond
	PostSubmitDelay  = 3 * time.Second
	UploadDelay      = 2 * time.Second
	PageExcerptLimit = 3000
)

// Page is the part of a live browser tab the application flows drive.
// Every call is bounded by a timeout.
type Page interface {
	// Goto navigates and waits for DOMContentLoaded.
	Goto(url string) error
	Pause(d time.Duration)
	URL() string
	// BodyText returns the visible text of the document body.
	BodyText() (string, error)
	// Query returns every element matching selector, visible or not.
	Query(selector string) ([]Element, error)
	// FirstVisible returns the first match if it becomes visible within timeout.
	FirstVisible(selector string, timeout time.Duration) (Element, bool)
	PressEnter() error
	Screenshot() ([]byte, error)
	Close() error
}

// Element is one DOM node behind a Page.
type Element interface {
	Attribute(name string) string
	// LabelText is the text of the <label for=id> bound to the element.
	LabelText() string
	Text() string
	Visible() bool
	Enabled() bool
	Fill(value string) error
	SetFiles(path string) error
	Check() error
	Click(force bool) error
	OptionCount() int
	SelectIndex(i int) error
}
