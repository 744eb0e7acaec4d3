package services

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// playwrightPage adapts a playwright.Page (and its private context) to Page.
type playwrightPage struct {
	page    playwright.Page
	context playwright.BrowserContext
}

func newPlaywrightPage(ctx playwright.BrowserContext, page playwright.Page) *playwrightPage {
	return &playwrightPage{page: page, context: ctx}
}

func ms(d time.Duration) *float64 {
	return playwright.Float(float64(d.Milliseconds()))
}

func (p *playwrightPage) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   ms(NavigationTimeout),
	})
	if err != nil {
		return fmt.Errorf("failed to load page: %w", err)
	}
	return nil
}

func (p *playwrightPage) Pause(d time.Duration) {
	p.page.WaitForTimeout(float64(d.Milliseconds()))
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) BodyText() (string, error) {
	return p.page.Locator("body").InnerText(playwright.LocatorInnerTextOptions{
		Timeout: ms(ControlTimeout),
	})
}

func (p *playwrightPage) Query(selector string) ([]Element, error) {
	locators, err := p.page.Locator(selector).All()
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, len(locators))
	for _, l := range locators {
		elements = append(elements, &playwrightElement{locator: l})
	}
	return elements, nil
}

// visibleOnly narrows a selector to visible matches, so a hidden first match
// does not shadow a visible later one.
func visibleOnly(selector string) string {
	return selector + " >> visible=true"
}

func (p *playwrightPage) FirstVisible(selector string, timeout time.Duration) (Element, bool) {
	first := p.page.Locator(visibleOnly(selector)).First()
	err := first.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
	if err != nil {
		return nil, false
	}
	return &playwrightElement{locator: first}, true
}

func (p *playwrightPage) PressEnter() error {
	return p.page.Keyboard().Press("Enter")
}

func (p *playwrightPage) Screenshot() ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

func (p *playwrightPage) Close() error {
	pageErr := p.page.Close()
	if p.context != nil {
		if err := p.context.Close(); err != nil && pageErr == nil {
			return err
		}
	}
	return pageErr
}

type playwrightElement struct {
	locator playwright.Locator
}

func (e *playwrightElement) Attribute(name string) string {
	v, err := e.locator.GetAttribute(name, playwright.LocatorGetAttributeOptions{Timeout: ms(ProbeTimeout)})
	if err != nil {
		return ""
	}
	return v
}

func (e *playwrightElement) LabelText() string {
	v, err := e.locator.Evaluate(`el => {
		if (!el.id) return '';
		const label = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
		return label ? label.textContent || '' : '';
	}`, nil, playwright.LocatorEvaluateOptions{Timeout: ms(ProbeTimeout)})
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (e *playwrightElement) Text() string {
	v, err := e.locator.TextContent(playwright.LocatorTextContentOptions{Timeout: ms(ProbeTimeout)})
	if err != nil {
		return ""
	}
	return v
}

func (e *playwrightElement) Visible() bool {
	v, err := e.locator.IsVisible()
	return err == nil && v
}

func (e *playwrightElement) Enabled() bool {
	v, err := e.locator.IsEnabled(playwright.LocatorIsEnabledOptions{Timeout: ms(ProbeTimeout)})
	return err == nil && v
}

func (e *playwrightElement) Fill(value string) error {
	return e.locator.Fill(value, playwright.LocatorFillOptions{Timeout: ms(ClickTimeout)})
}

func (e *playwrightElement) SetFiles(path string) error {
	return e.locator.SetInputFiles(path, playwright.LocatorSetInputFilesOptions{Timeout: ms(ClickTimeout)})
}

func (e *playwrightElement) Check() error {
	return e.locator.Check(playwright.LocatorCheckOptions{Timeout: ms(ClickTimeout)})
}

func (e *playwrightElement) Click(force bool) error {
	return e.locator.Click(playwright.LocatorClickOptions{
		Force:   playwright.Bool(force),
		Timeout: ms(ClickTimeout),
	})
}

func (e *playwrightElement) OptionCount() int {
	n, err := e.locator.Locator("option").Count()
	if err != nil {
		return 0
	}
	return n
}

func (e *playwrightElement) SelectIndex(i int) error {
	_, err := e.locator.SelectOption(playwright.SelectOptionValues{Indexes: &[]int{i}},
		playwright.LocatorSelectOptionOptions{Timeout: ms(ClickTimeout)})
	return err
}
