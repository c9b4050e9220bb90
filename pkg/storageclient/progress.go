package storageclient

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	progressBarWidth     = 32
	progressRenderPeriod = 120 * time.Millisecond
)

// progressBar рисует однострочный индикатор передачи в out. Все методы безопасны для nil.
type progressBar struct {
	mu sync.Mutex

	out     io.Writer
	prefix  string
	total   int64
	current int64
	started time.Time
	drawn   time.Time
	width   int
	done    bool
}

func newProgressBar(out io.Writer, prefix string, total int64) *progressBar {
	return &progressBar{
		out:     out,
		prefix:  prefix,
		total:   total,
		started: time.Now(),
	}
}

func (p *progressBar) AddBytes(n int64) {
	if p == nil || n <= 0 {
		return
	}
	p.mu.Lock()
	p.current += n
	p.mu.Unlock()
	p.render(false, "")
}

func (p *progressBar) Finish() { p.complete(" ✓") }

func (p *progressBar) Fail(err error) {
	if err == nil {
		p.complete(" ✗")
		return
	}
	p.complete(fmt.Sprintf(" ✗ %v", err))
}

func (p *progressBar) render(force bool, suffix string) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	now := time.Now()
	if !force && now.Sub(p.drawn) < progressRenderPeriod {
		return
	}
	p.drawn = now
	p.drawLocked(suffix, "")
}

func (p *progressBar) complete(suffix string) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	p.done = true
	p.drawLocked(suffix, "\n")
}

// drawLocked перерисовывает строку поверх предыдущей, затирая хвост пробелами.
func (p *progressBar) drawLocked(suffix, end string) {
	line := p.lineLocked() + suffix
	pad := ""
	if p.width > len(line) {
		pad = strings.Repeat(" ", p.width-len(line))
	}
	p.width = len(line)
	fmt.Fprintf(p.out, "\r%s%s%s", line, pad, end)
}

func (p *progressBar) lineLocked() string {
	var b strings.Builder
	b.WriteString(p.prefix)
	b.WriteByte(' ')

	if p.total > 0 {
		ratio := min(float64(p.current)/float64(p.total), 1)
		filled := min(int(ratio*progressBarWidth+0.5), progressBarWidth)
		fmt.Fprintf(&b, "[%s%s] %3d%% %s/%s",
			strings.Repeat("=", filled),
			strings.Repeat(" ", progressBarWidth-filled),
			int(ratio*100+0.5),
			humanBytes(p.current),
			humanBytes(p.total),
		)
	} else {
		fmt.Fprintf(&b, "%s transferred", humanBytes(p.current))
	}

	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 && p.current > 0 {
		fmt.Fprintf(&b, " (%s/s)", humanBytes(int64(float64(p.current)/elapsed)))
	}

	return b.String()
}

type progressWriter struct {
	bar *progressBar
}

func (w progressWriter) Write(p []byte) (int, error) {
	w.bar.AddBytes(int64(len(p)))
	return len(p), nil
}

// progressReadCloser ведёт индикатор по мере чтения и закрывает его на EOF, ошибке или Close.
type progressReadCloser struct {
	io.ReadCloser
	bar  *progressBar
	once sync.Once
}

func newProgressReadCloser(inner io.ReadCloser, bar *progressBar) io.ReadCloser {
	if bar == nil || inner == nil {
		return inner
	}

	return &progressReadCloser{ReadCloser: inner, bar: bar}
}

func (p *progressReadCloser) Read(b []byte) (int, error) {
	n, err := p.ReadCloser.Read(b)
	p.bar.AddBytes(int64(n))
	if err != nil {
		p.finish(err)
	}
	return n, err
}

func (p *progressReadCloser) Close() error {
	err := p.ReadCloser.Close()
	p.finish(err)
	return err
}

func (p *progressReadCloser) finish(err error) {
	p.once.Do(func() {
		if err != nil && err != io.EOF {
			p.bar.Fail(err)
			return
		}
		p.bar.Finish()
	})
}

func humanBytes(v int64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%d B", v)
	}
	div, exp := int64(unit), 0
	for n := v / unit; n >= unit && exp < 4; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(v)/float64(div), "KMGTP"[exp])
}
