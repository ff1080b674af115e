package ftp

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Lister produces the lazy year/month/line/ship/file traversal described in
// §4.2. It holds no state between calls to List; each call starts a fresh,
// non-restartable sequence.
type Lister struct {
	control *ControlClient
}

// NewLister creates a Lister backed by control for directory listing.
func NewLister(control *ControlClient) *Lister {
	return &Lister{control: control}
}

// List returns a finite, lazy sequence of FileInfo as a channel. The
// traversal goroutine checks opts.Cancel between directory levels and stops
// early if it returns true, and stops once opts.MaxFiles entries have been
// yielded. The channel is closed when the traversal completes, is cancelled,
// or the context is done.
func (l *Lister) List(ctx context.Context, opts ListOptions) <-chan Item {
	out := make(chan Item)
	go func() {
		defer close(out)
		l.walk(ctx, opts, out)
	}()
	return out
}

func (l *Lister) cancelled(ctx context.Context, opts ListOptions) bool {
	if ctx.Err() != nil {
		return true
	}
	return opts.Cancel != nil && opts.Cancel()
}

func (l *Lister) send(ctx context.Context, out chan<- Item, item Item) bool {
	select {
	case out <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

func (l *Lister) walk(ctx context.Context, opts ListOptions, out chan<- Item) {
	years, err := l.discoverYears(opts)
	if err != nil {
		l.send(ctx, out, Item{Err: err})
		return
	}

	sent := 0
	now := time.Now().UTC()

	for _, year := range years {
		if l.cancelled(ctx, opts) {
			return
		}

		months, err := l.listIntDirs(path.Join("/", strconv.Itoa(year)))
		if err != nil {
			if !l.send(ctx, out, Item{Err: err}) {
				return
			}
			continue
		}
		sort.Ints(months)

		for _, month := range months {
			if opts.Month != 0 && month != opts.Month {
				continue
			}
			if !opts.IncludeHistorical && before(year, month, now.Year(), int(now.Month())) {
				continue
			}
			if l.cancelled(ctx, opts) {
				return
			}

			if !l.walkMonth(ctx, opts, year, month, out, &sent) {
				return
			}
		}
	}
}

func before(year, month, curYear, curMonth int) bool {
	if year != curYear {
		return year < curYear
	}
	return month < curMonth
}

func (l *Lister) walkMonth(ctx context.Context, opts ListOptions, year, month int, out chan<- Item, sent *int) bool {
	monthDir := path.Join("/", strconv.Itoa(year), strconv.Itoa(month))
	lines, err := l.control.NameList(monthDir)
	if err != nil {
		return l.send(ctx, out, Item{Err: err})
	}

	for _, line := range lines {
		if opts.LineID != "" && line != opts.LineID {
			continue
		}
		if l.cancelled(ctx, opts) {
			return false
		}

		if !l.walkLine(ctx, opts, monthDir, line, out, sent) {
			return false
		}
	}
	return true
}

func (l *Lister) walkLine(ctx context.Context, opts ListOptions, monthDir, line string, out chan<- Item, sent *int) bool {
	lineDir := path.Join(monthDir, line)
	ships, err := l.control.NameList(lineDir)
	if err != nil {
		return l.send(ctx, out, Item{Err: err})
	}

	for _, ship := range ships {
		if opts.ShipID != "" && ship != opts.ShipID {
			continue
		}
		if l.cancelled(ctx, opts) {
			return false
		}

		if !l.walkShip(ctx, opts, lineDir, ship, out, sent) {
			return false
		}
	}
	return true
}

func (l *Lister) walkShip(ctx context.Context, opts ListOptions, lineDir, ship string, out chan<- Item, sent *int) bool {
	shipDir := path.Join(lineDir, ship)
	entries, err := l.control.NameList(shipDir)
	if err != nil {
		return l.send(ctx, out, Item{Err: err})
	}

	for _, name := range entries {
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		if opts.MaxFiles > 0 && *sent >= opts.MaxFiles {
			return false
		}
		if l.cancelled(ctx, opts) {
			return false
		}

		fi := FileInfo{
			Path: path.Join(shipDir, name),
			Name: name,
		}
		if sz, err := l.control.Size(fi.Path); err == nil {
			fi.Size = sz
		}

		if !l.send(ctx, out, Item{Info: fi}) {
			return false
		}
		*sent++
	}
	return true
}

// AvailableYears lists the year directories present at the feed root,
// backing the /cruise-import/available-years endpoint (§6.3).
func (l *Lister) AvailableYears() ([]int, error) {
	return l.discoverYears(ListOptions{})
}

// discoverYears implements §4.2 step 1.
func (l *Lister) discoverYears(opts ListOptions) ([]int, error) {
	if opts.Year != 0 {
		return []int{opts.Year}, nil
	}

	names, err := l.control.NameList("/")
	if err != nil {
		return nil, err
	}

	currentYear := time.Now().UTC().Year()
	low := 2000
	if currentYear > low {
		low = currentYear
	}

	var years []int
	for _, n := range names {
		y, err := strconv.Atoi(n)
		if err != nil {
			continue
		}
		if y >= low && y <= 2100 {
			years = append(years, y)
		}
	}
	sort.Ints(years)

	if len(years) == 0 {
		return []int{currentYear, currentYear + 1}, nil
	}
	return years, nil
}

// listIntDirs lists entries at dir whose names parse as integers.
func (l *Lister) listIntDirs(dir string) ([]int, error) {
	names, err := l.control.NameList(dir)
	if err != nil {
		return nil, err
	}
	var out []int
	for _, n := range names {
		if v, err := strconv.Atoi(n); err == nil {
			out = append(out, v)
		}
	}
	return out, nil
}

// ParsePath extracts the authoritative provider identifiers from a vendor
// file path of the form /YYYY/MM/LINE/SHIP/CODE.json (§4.2).
func ParsePath(p string) (PathIDs, bool) {
	p = strings.TrimPrefix(p, "/")
	parts := strings.Split(p, "/")
	if len(parts) != 5 {
		return PathIDs{}, false
	}

	line, ship, file := parts[2], parts[3], parts[4]
	if line == "" || ship == "" || file == "" {
		return PathIDs{}, false
	}
	code := strings.TrimSuffix(file, ".json")
	if code == file || code == "" {
		return PathIDs{}, false
	}

	return PathIDs{CruiseLineID: line, ShipID: ship, CodeToCruiseID: code}, true
}
