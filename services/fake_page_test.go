package services

import (
	"context"
	"errors"
	"time"

	"autoapply/models"
)

type fakeElement struct {
	attrs    map[string]string
	label    string
	text     string
	hidden   bool
	disabled bool
	options  int
	fillErr  error
	clickErr error
	onClick  func()

	filled   string
	files    string
	checked  bool
	clicks   int
	forced   bool
	selected int
}

func (e *fakeElement) Attribute(name string) string { return e.attrs[name] }
func (e *fakeElement) LabelText() string            { return e.label }
func (e *fakeElement) Text() string                 { return e.text }
func (e *fakeElement) Visible() bool                { return !e.hidden }
func (e *fakeElement) Enabled() bool                { return !e.disabled }
func (e *fakeElement) OptionCount() int             { return e.options }

func (e *fakeElement) Fill(value string) error {
	if e.fillErr != nil {
		return e.fillErr
	}
	e.filled = value
	return nil
}

func (e *fakeElement) SetFiles(path string) error {
	e.files = path
	return nil
}

func (e *fakeElement) Check() error {
	e.checked = true
	return nil
}

func (e *fakeElement) Click(force bool) error {
	if e.clickErr != nil {
		return e.clickErr
	}
	e.clicks++
	e.forced = force
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) SelectIndex(i int) error {
	e.selected = i
	return nil
}

func input(attrs map[string]string) *fakeElement {
	return &fakeElement{attrs: attrs}
}

func button(text string) *fakeElement {
	return &fakeElement{text: text}
}

// fakePage answers selectors from a fixed map. Unknown selectors match
// nothing.
type fakePage struct {
	url        string
	body       string
	elements   map[string][]*fakeElement
	gotoErr    error
	enterErr   error
	panicOn    string
	screenshot []byte
	onGoto     func(url string)

	gotos   []string
	queries map[string]int
	probes  map[string]int
	enters  int
	pauses  int
	closed  bool
}

func newFakePage() *fakePage {
	return &fakePage{
		elements: map[string][]*fakeElement{},
		queries:  map[string]int{},
		probes:   map[string]int{},
	}
}

func (p *fakePage) on(selector string, els ...*fakeElement) *fakePage {
	p.elements[selector] = append(p.elements[selector], els...)
	return p
}

func (p *fakePage) Goto(url string) error {
	p.gotos = append(p.gotos, url)
	if p.onGoto != nil {
		p.onGoto(url)
	}
	if p.gotoErr != nil {
		return p.gotoErr
	}
	p.url = url
	return nil
}

func (p *fakePage) Pause(d time.Duration) { p.pauses++ }
func (p *fakePage) URL() string           { return p.url }

func (p *fakePage) BodyText() (string, error) { return p.body, nil }

func (p *fakePage) Query(selector string) ([]Element, error) {
	p.queries[selector]++
	if selector == p.panicOn {
		panic("page crashed")
	}
	var out []Element
	for _, el := range p.elements[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (p *fakePage) FirstVisible(selector string, timeout time.Duration) (Element, bool) {
	p.probes[selector]++
	if selector == p.panicOn {
		panic("page crashed")
	}
	for _, el := range p.elements[selector] {
		if el.Visible() {
			return el, true
		}
	}
	return nil, false
}

func (p *fakePage) PressEnter() error {
	if p.enterErr != nil {
		return p.enterErr
	}
	p.enters++
	return nil
}

func (p *fakePage) Screenshot() ([]byte, error) {
	if p.screenshot == nil {
		return nil, errors.New("no screenshot")
	}
	return p.screenshot, nil
}

func (p *fakePage) Close() error {
	p.closed = true
	return nil
}

// calls is the number of page operations that touch the DOM.
func (p *fakePage) calls() int {
	n := len(p.gotos) + p.enters
	for _, c := range p.queries {
		n += c
	}
	for _, c := range p.probes {
		n += c
	}
	return n
}

type fakeSessions struct {
	page     *fakePage
	startErr error
	openErr  error

	starts int
	opened int
	closed int
}

func (s *fakeSessions) EnsureStarted(ctx context.Context) error {
	s.starts++
	return s.startErr
}

func (s *fakeSessions) OpenSession(ctx context.Context) (Page, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opened++
	return s.page, nil
}

func (s *fakeSessions) CloseSession(page Page) error {
	s.closed++
	return page.Close()
}

func (s *fakeSessions) Shutdown() error { return nil }

type fakeCompleter struct {
	response string
	err      error

	prompts      []string
	maxTokens    []int64
	temperatures []float64
}

func (c *fakeCompleter) Complete(ctx context.Context, prompt string, maxTokens int64, temperature float64) (string, error) {
	c.prompts = append(c.prompts, prompt)
	c.maxTokens = append(c.maxTokens, maxTokens)
	c.temperatures = append(c.temperatures, temperature)
	return c.response, c.err
}

type fakeContent struct {
	analysis PageAnalysis
	letter   string
	letters  int
}

func (c *fakeContent) AnalyzePage(ctx context.Context, pageText string, profile models.UserProfile) PageAnalysis {
	return c.analysis
}

func (c *fakeContent) GenerateCoverLetter(ctx context.Context, profile models.UserProfile) string {
	c.letters++
	return c.letter
}
