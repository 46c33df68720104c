package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/askelund/proofdeck/internal/common"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	calls []string

	statusArg  string
	commentArg struct {
		id   string
		x, y int
		text string
	}
}

func (f *fakeExec) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) Create(ctx context.Context, name string) error {
	f.calls = append(f.calls, "create "+name)
	return nil
}
func (f *fakeExec) Open(ctx context.Context, pid, key string) error {
	f.calls = append(f.calls, "open "+pid+" "+key)
	return nil
}
func (f *fakeExec) Upload(ctx context.Context, pid, key, path string) error {
	f.calls = append(f.calls, "upload "+path)
	return nil
}
func (f *fakeExec) Send(ctx context.Context, path string) error {
	f.calls = append(f.calls, "send "+path)
	return nil
}
func (f *fakeExec) Review(ctx context.Context, id, key string) error {
	f.calls = append(f.calls, "review "+id)
	return nil
}
func (f *fakeExec) SetStatus(ctx context.Context, id, status string) error {
	f.calls = append(f.calls, "status")
	f.statusArg = status
	return nil
}
func (f *fakeExec) Comment(ctx context.Context, id string, x, y int, text string) error {
	f.calls = append(f.calls, "comment")
	f.commentArg.id, f.commentArg.x, f.commentArg.y, f.commentArg.text = id, x, y, text
	return nil
}
func (f *fakeExec) Watch(ctx context.Context, pid, key string) error {
	f.calls = append(f.calls, "watch")
	return nil
}
func (f *fakeExec) WatchList(ctx context.Context) error {
	f.calls = append(f.calls, "watch-list")
	return nil
}
func (f *fakeExec) WatchReview(ctx context.Context, id, key string) error {
	f.calls = append(f.calls, "watch-review "+id+" "+key)
	return nil
}
func (f *fakeExec) Delete(ctx context.Context, pid, key string) error {
	f.calls = append(f.calls, "delete")
	return nil
}

func runWith(t *testing.T, lines ...string) *fakeExec {
	t.Helper()
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	sc := bufio.NewScanner(strings.NewReader(strings.Join(lines, "\n")))
	runREPL(context.Background(), exec, sc)
	return exec
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	exec := runWith(t,
		"help",
		"list",
		"create Autumn Shoot",
		"open p1 abc",
		"review r1",
		"unknowncmd",
		"exit",
	)

	assert.Equal(t, []string{"list", "create Autumn Shoot", "open p1 abc", "review r1"}, exec.calls)
}

func TestRunREPL_StatusCommands(t *testing.T) {
	exec := runWith(t, "approve r1", "exit")
	assert.Equal(t, common.StatusApproved, exec.statusArg)

	exec = runWith(t, "changes r1", "quit")
	assert.Equal(t, common.StatusNeedsChanges, exec.statusArg)
}

func TestRunREPL_CommentParsesCoordinates(t *testing.T) {
	exec := runWith(t, "comment r1 120 45 too dark in the corner", "exit")

	assert.Equal(t, "r1", exec.commentArg.id)
	assert.Equal(t, 120, exec.commentArg.x)
	assert.Equal(t, 45, exec.commentArg.y)
	assert.Equal(t, "too dark in the corner", exec.commentArg.text)
}

func TestRunREPL_WatchCommands(t *testing.T) {
	exec := runWith(t,
		"watch p1 abc",
		"watch-list",
		"watch-review r1 abc",
		"watch-review r2",
		"exit",
	)
	assert.Equal(t, []string{"watch", "watch-list", "watch-review r1 abc", "watch-review r2 "}, exec.calls)
}

func TestRunREPL_BadArgsDoNotDispatch(t *testing.T) {
	exec := runWith(t,
		"create",
		"open p1",
		"comment r1 x y text",
		"exit",
	)
	assert.Empty(t, exec.calls)
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	exec := runWith(t, "list")
	assert.Equal(t, []string{"list"}, exec.calls)
}
