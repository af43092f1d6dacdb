package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/quickgerman/internal/clock"
	"github.com/1broseidon/quickgerman/internal/translate"
)

type call struct {
	text string
	dir  translate.Direction
}

type fakeTranslator struct {
	mu      sync.Mutex
	calls   []call
	results map[string]string
	errs    map[string]error
	gates   map[string]chan struct{}
}

func newFakeTranslator() *fakeTranslator {
	return &fakeTranslator{
		results: map[string]string{},
		errs:    map[string]error{},
		gates:   map[string]chan struct{}{},
	}
}

// hold makes requests for text block until the returned func is called.
func (f *fakeTranslator) hold(text string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[text] = ch
	f.mu.Unlock()
	return func() { close(ch) }
}

func (f *fakeTranslator) Translate(ctx context.Context, text string, dir translate.Direction) (string, bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{text, dir})
	gate := f.gates[text]
	res, hasRes := f.results[text]
	err := f.errs[text]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return "", false, err
	}
	if !hasRes {
		return "", false, nil
	}
	return res, true, nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type view struct {
	mu       sync.Mutex
	displays []Display
	loading  []bool
	inputs   []string
}

func (v *view) onDisplay(d Display) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.displays = append(v.displays, d)
}

func (v *view) onLoading(b bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = append(v.loading, b)
}

func (v *view) onInput(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inputs = append(v.inputs, s)
}

func newTestCoordinator(tr translate.Translator) (*Coordinator, *clock.Fake, *view) {
	clk := clock.NewFake()
	v := &view{}
	c := New(Options{
		Translator: tr,
		Clock:      clk,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnDisplay:  v.onDisplay,
		OnLoading:  v.onLoading,
		OnInput:    v.onInput,
	})
	return c, clk, v
}

func TestDebounceCollapsesBursts(t *testing.T) {
	tr := newFakeTranslator()
	tr.results["Hallo Welt"] = "Hello world"
	c, clk, _ := newTestCoordinator(tr)

	for _, s := range []string{"H", "Ha", "Hal", "Hallo", "Hallo Welt"} {
		c.InputChanged(s)
		clk.Advance(100 * time.Millisecond)
	}
	if n := tr.callCount(); n != 0 {
		t.Fatalf("translator called %d times during typing", n)
	}

	clk.Advance(300 * time.Millisecond)
	c.Wait()

	if n := tr.callCount(); n != 1 {
		t.Fatalf("translator calls = %d, want 1", n)
	}
	if tr.calls[0].text != "Hallo Welt" || tr.calls[0].dir != translate.GermanToEnglish {
		t.Fatalf("call = %+v", tr.calls[0])
	}
	st := c.State()
	if st.Display != (Display{Kind: DisplayResult, Text: "Hello world"}) || st.Loading {
		t.Fatalf("state = %+v", st)
	}
}

func TestEmptyInputResetsSynchronously(t *testing.T) {
	tr := newFakeTranslator()
	c, clk, v := newTestCoordinator(tr)

	c.InputChanged("   ")
	if st := c.State(); st.Display != Placeholder() || st.Loading {
		t.Fatalf("state = %+v", st)
	}
	clk.Advance(time.Second)
	if tr.callCount() != 0 {
		t.Fatal("blank input reached the translator")
	}
	if len(v.loading) != 0 {
		t.Fatalf("loading toggled for blank input: %v", v.loading)
	}
}

func TestEmptyInputCancelsPendingDebounce(t *testing.T) {
	tr := newFakeTranslator()
	c, clk, _ := newTestCoordinator(tr)

	c.InputChanged("Hallo")
	clk.Advance(200 * time.Millisecond)
	c.InputChanged("")
	clk.Advance(time.Second)
	if tr.callCount() != 0 {
		t.Fatal("pending debounce fired after input was cleared")
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	tr := newFakeTranslator()
	tr.results["eins"] = "one"
	tr.results["zwei"] = "two"
	releaseFirst := tr.hold("eins")
	c, _, _ := newTestCoordinator(tr)

	c.SetInput("eins")
	c.SetInput("zwei")

	deadline := time.Now().Add(2 * time.Second)
	for c.State().Display.Kind != DisplayResult {
		if time.Now().After(deadline) {
			t.Fatal("second translation never applied")
		}
		time.Sleep(time.Millisecond)
	}

	releaseFirst()
	c.Wait()

	st := c.State()
	if st.Display.Text != "two" {
		t.Fatalf("display = %+v, want two", st.Display)
	}
	if st.Loading {
		t.Fatal("loading still on")
	}
}

func TestLoadingFollowsLatestToken(t *testing.T) {
	tr := newFakeTranslator()
	tr.results["a"] = "A"
	tr.results["b"] = "B"
	releaseA := tr.hold("a")
	releaseB := tr.hold("b")
	c, _, _ := newTestCoordinator(tr)

	c.SetInput("a")
	c.SetInput("b")
	if !c.State().Loading {
		t.Fatal("loading off while latest request in flight")
	}

	releaseA()
	time.Sleep(10 * time.Millisecond)
	if !c.State().Loading {
		t.Fatal("stale completion cleared loading")
	}

	releaseB()
	c.Wait()
	if c.State().Loading {
		t.Fatal("loading on after latest completed")
	}
}

func TestResultStates(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeTranslator)
		want  Display
	}{
		{"result", func(f *fakeTranslator) { f.results["x"] = "y" }, Display{DisplayResult, "y"}},
		{"no result", func(f *fakeTranslator) {}, Display{DisplayNoResult, NoResultText}},
		{"error", func(f *fakeTranslator) { f.errs["x"] = errors.New("bad request") }, Display{DisplayError, ErrorText}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newFakeTranslator()
			tt.setup(tr)
			c, _, v := newTestCoordinator(tr)
			c.SetInput("x")
			c.Wait()
			if got := c.State().Display; got != tt.want {
				t.Fatalf("display = %+v, want %+v", got, tt.want)
			}
			if len(v.displays) == 0 || v.displays[len(v.displays)-1] != tt.want {
				t.Fatalf("last emitted display = %v", v.displays)
			}
		})
	}
}

func TestSetInputBypassesDebounce(t *testing.T) {
	tr := newFakeTranslator()
	tr.results["Guten Tag"] = "Good day"
	c, _, v := newTestCoordinator(tr)

	c.InputChanged("Gut")
	c.SetInput("Guten Tag")
	c.Wait()

	if tr.callCount() != 1 {
		t.Fatalf("calls = %d, want 1", tr.callCount())
	}
	if len(v.inputs) != 1 || v.inputs[0] != "Guten Tag" {
		t.Fatalf("input notifications = %v", v.inputs)
	}
}

func TestSwapMovesResultIntoInput(t *testing.T) {
	tr := newFakeTranslator()
	tr.results["Hund"] = "dog"
	tr.results["dog"] = "Hund"
	c, _, v := newTestCoordinator(tr)

	c.SetInput("Hund")
	c.Wait()

	if dir := c.Swap(); dir != translate.EnglishToGerman {
		t.Fatalf("Swap() = %s", dir)
	}
	c.Wait()

	st := c.State()
	if st.Input != "dog" || st.Display.Text != "Hund" {
		t.Fatalf("state after swap = %+v", st)
	}
	last := tr.calls[len(tr.calls)-1]
	if last.text != "dog" || last.dir != translate.EnglishToGerman {
		t.Fatalf("last call = %+v", last)
	}
	if v.inputs[len(v.inputs)-1] != "dog" {
		t.Fatalf("input notifications = %v", v.inputs)
	}
}

func TestSwapKeepsInputWithoutResult(t *testing.T) {
	tr := newFakeTranslator()
	c, _, _ := newTestCoordinator(tr)

	c.SetInput("Quatsch")
	c.Wait()
	c.Swap()
	c.Wait()

	if st := c.State(); st.Input != "Quatsch" || st.Direction != translate.EnglishToGerman {
		t.Fatalf("state = %+v", st)
	}
}

func TestCloseDropsInflight(t *testing.T) {
	tr := newFakeTranslator()
	tr.results["x"] = "y"
	release := tr.hold("x")
	c, _, _ := newTestCoordinator(tr)
	c.SetInput("x")
	go func() {
		time.Sleep(5 * time.Millisecond)
		release()
	}()
	c.Close()
	if st := c.State(); st.Display.Kind == DisplayResult {
		t.Fatal("result applied after Close")
	}
}
