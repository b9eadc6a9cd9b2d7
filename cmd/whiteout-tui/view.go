package main

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/camera"
	"github.com/pthm-cable/whiteout/clock"
	"github.com/pthm-cable/whiteout/components"
	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/feedback"
	"github.com/pthm-cable/whiteout/game"
	"github.com/pthm-cable/whiteout/minigame"
	"github.com/pthm-cable/whiteout/player"
	"github.com/pthm-cable/whiteout/ranking"
	"github.com/pthm-cable/whiteout/throttle"
	"github.com/pthm-cable/whiteout/weather"
)

const (
	keyHold    = 150 * time.Millisecond
	turnStep   = 25.0 // Pixels of synthetic drag per turn key event
	fogFar     = 22.0
	snowChance = 0.03
)

var (
	snow      = colorful.Color{R: 0.91, G: 0.93, B: 0.95}
	inkStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlack)
	dimStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	hlStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	redStyle  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	warmStyle = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
)

// tui is the terminal frontend: it turns key events into game input and
// draws the round top-down, one world unit per two columns.
type tui struct {
	screen tcell.Screen
	game   *game.Game
	cfg    *config.Config
	latest *throttle.Latest
	mapper *feedback.Mapper
	logger *slog.Logger
	rng    *rand.Rand
	wind   *weather.Wind

	keys   *heldKeys
	turn   float64
	strike bool
	quit   bool

	view      *camera.Camera
	clockText string
	loading   int

	nickname []rune
	entering bool
	rank     int
}

func newTUI(screen tcell.Screen, cfg *config.Config, opts game.Options) (*tui, error) {
	mapper, err := feedback.NewMapper(cfg.Feedback)
	if err != nil {
		return nil, err
	}
	t := &tui{
		screen:    screen,
		cfg:       cfg,
		latest:    throttle.NewLatest(),
		mapper:    mapper,
		logger:    opts.Logger,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		wind:      weather.NewWind(cfg.Wind, opts.Seed),
		keys:      newHeldKeys(keyHold),
		view:      camera.New(1, 1, 1),
		clockText: ranking.FormatClock(0),
		rank:      -1,
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}

	if opts.Sink != nil {
		opts.Sink = throttle.Multi{t.latest, opts.Sink}
	} else {
		opts.Sink = t.latest
	}
	host := opts.Hooks
	opts.Hooks.OnLoadingProgress = func(p int) {
		t.loading = p
		if host.OnLoadingProgress != nil {
			host.OnLoadingProgress(p)
		}
	}
	opts.Hooks.OnClear = func(secs float64) {
		t.entering = t.game.Board().WouldPlace(secs)
		if host.OnClear != nil {
			host.OnClear(secs)
		}
	}
	opts.Hooks.OnStateChange = func(from, to game.State) {
		t.stateChanged(to)
		if host.OnStateChange != nil {
			host.OnStateChange(from, to)
		}
	}

	t.game, err = game.NewGame(cfg, opts)
	if err != nil {
		return nil, err
	}
	t.game.Elapsed().Subscribe(func(s int) { t.clockText = ranking.FormatClock(float64(s)) })
	return t, nil
}

func (t *tui) stateChanged(to game.State) {
	t.keys.Clear()
	t.turn, t.strike = 0, false
	switch to {
	case game.StateStart:
		t.nickname, t.entering, t.rank = nil, false, -1
	case game.StateLoading:
		t.loading = 0
	case game.StatePlaying:
		t.latest.Reset()
	}
}

// handle applies one terminal event.
func (t *tui) handle(ev tcell.Event, now time.Time) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		t.key(ev, now)
	case *tcell.EventResize:
		t.screen.Sync()
	}
}

func (t *tui) key(ev *tcell.EventKey, now time.Time) {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		t.quit = true
		return
	}

	switch t.game.State() {
	case game.StateStart:
		if ev.Key() == tcell.KeyEnter {
			t.do("begin", t.game.Begin())
		}

	case game.StatePlaying:
		if ev.Key() != tcell.KeyRune {
			return
		}
		switch r := ev.Rune(); r {
		case 'w', 'a', 's', 'd':
			t.keys.Press(r, now)
		case 'q':
			t.turn -= turnStep
		case 'e':
			t.turn += turnStep
		case ' ':
			t.strike = true
		}

	case game.StateClear:
		if p, _ := t.game.Transition(); p < 1 {
			return
		}
		if t.entering {
			t.editNickname(ev)
			return
		}
		if ev.Key() == tcell.KeyEnter {
			t.do("restart", t.game.Restart())
		}

	case game.StateGameOver:
		if p, _ := t.game.Transition(); p >= 1 && ev.Key() == tcell.KeyEnter {
			t.do("restart", t.game.Restart())
		}
	}
}

func (t *tui) editNickname(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		rank, err := t.game.SubmitRecord(string(t.nickname))
		t.do("submit record", err)
		t.rank = rank
		t.entering = false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.nickname) > 0 {
			t.nickname = t.nickname[:len(t.nickname)-1]
		}
	case tcell.KeyRune:
		if len(t.nickname) < t.cfg.Ranking.MaxNickname {
			t.nickname = append(t.nickname, ev.Rune())
		}
	}
}

func (t *tui) do(what string, err error) {
	if err != nil {
		t.logger.Error(what, "error", err)
	}
}

// input builds this frame's game input and consumes the one-shot parts.
func (t *tui) input(now time.Time) game.Input {
	in := game.Input{
		Input: player.Input{
			Forward: t.keys.Down('w', now),
			Back:    t.keys.Down('s', now),
			Left:    t.keys.Down('a', now),
			Right:   t.keys.Down('d', now),
			DragX:   t.turn,
		},
		Strike: t.strike,
	}
	t.turn, t.strike = 0, false
	return in
}

// frame advances the game by dt seconds and redraws.
func (t *tui) frame(dt float64, now time.Time) {
	t.game.Tick(dt, t.input(now))
	t.wind.Advance(dt)
	t.draw()
}

func (t *tui) draw() {
	t.screen.Clear()
	w, h := t.screen.Size()

	switch t.game.State() {
	case game.StateStart:
		t.drawStart(w, h)
	case game.StateLoading:
		t.center(h/2, fmt.Sprintf("Loading %d%%", max(t.loading, 0)), inkStyle.Reverse(true))
	case game.StatePlaying:
		t.drawField(w, h-2, 0)
		t.drawStatus(w, h)
	case game.StateClear, game.StateGameOver:
		t.drawEnded(w, h)
	}
	t.screen.Show()
	t.game.RecordFrame()
}

func (t *tui) drawStart(w, h int) {
	t.center(h/5, "W H I T E O U T", hlStyle)
	t.center(h/5+2, "Find your sister in the storm. Do not let them reach you.", dimStyle)
	t.center(h/5+4, "[ Enter ] start    [ Esc ] quit", inkStyle.Reverse(true))
	t.drawRankings(h/5+7, -1)
	t.center(h-2, "w a s d walk   q e turn   space strike", dimStyle)
}

func (t *tui) drawEnded(w, h int) {
	round := t.game.Round()
	progress, flash := t.game.Transition()
	if progress < 1 {
		var tint colorful.Color
		if flash {
			tint = colorful.Color{R: 1, G: 1, B: 1}
			if round.Outcome() == game.OutcomeGameOver {
				tint = colorful.Color{R: 0.6, G: 0.05, B: 0.1}
			}
		}
		t.drawField(w, h-2, progress)
		if flash {
			t.fill(w, h, tint)
		}
		return
	}

	if round.Outcome() == game.OutcomeClear {
		t.center(h/6, "You found her", warmStyle)
		t.center(h/6+2, ranking.FormatPrecise(round.Duration()), hlStyle)
		y := h/6 + 4
		switch {
		case t.entering:
			t.center(y, "Nickname: "+string(t.nickname)+"_", inkStyle.Reverse(true))
		case t.rank > 0:
			t.center(y, fmt.Sprintf("Rank #%d   [ Enter ] play again", t.rank), hlStyle)
		default:
			t.center(y, "[ Enter ] play again", dimStyle)
		}
		t.drawRankings(y+2, t.rank)
		return
	}
	t.center(h/3, "The storm took you", redStyle)
	t.center(h/3+2, "Survived "+ranking.FormatClock(round.Duration()), dimStyle)
	t.center(h/3+4, "[ Enter ] try again", dimStyle)
}

func (t *tui) drawRankings(y, highlight int) {
	records := t.game.Board().Records()
	t.center(y, "Rankings", hlStyle)
	if len(records) == 0 {
		t.center(y+1, "No records yet", dimStyle)
		return
	}
	for i, rec := range records {
		style := dimStyle
		if i+1 == highlight {
			style = hlStyle
		}
		t.center(y+1+i, fmt.Sprintf("%2d. %-12s %s", i+1, rec.Nickname, ranking.FormatPrecise(rec.Time)), style)
	}
}

// background returns the cell colour at normalized radius r from the
// screen centre under the current hints, darkened by fade.
func (t *tui) background(r, fade float64, sister feedback.Tint, demon feedback.DemonTint) colorful.Color {
	c := snow
	if demon.Visible() {
		col := demon.Center.Color.BlendRgb(demon.Edge.Color, r)
		alpha := demon.Center.Alpha + (demon.Edge.Alpha-demon.Center.Alpha)*r
		c = c.BlendRgb(col, alpha)
	}
	if sister.Visible() {
		c = c.BlendRgb(sister.Color, sister.Alpha)
	}
	if fade > 0 {
		c = c.BlendRgb(colorful.Color{}, fade)
	}
	return c.Clamped()
}

func rgb(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// drawField draws the snowfield around the player on rows [0, rows).
func (t *tui) drawField(w, rows int, fade float64) {
	round := t.game.Round()
	me := t.game.Player()
	t.view.Resize(float32(w)/2, float32(rows))
	t.view.X, t.view.Z, t.view.Yaw = me.Position.X, me.Position.Z, me.CameraYaw

	sister := t.mapper.Sister(t.latest.SisterDistance())
	demon := t.mapper.Demon(t.latest.DemonDistance())
	cx, cy := float64(w)/2, float64(rows)/2
	diag := math.Hypot(cx, cy)

	chance := snowChance * (2 - t.wind.Calm())
	for y := 0; y < rows; y++ {
		flake := snowGlyph(t.wind.Gust(float64(y)/float64(rows)), t.cfg.Wind.Strength)
		for x := 0; x < w; x++ {
			r := math.Hypot(float64(x)-cx, float64(y)-cy) / diag
			bg := rgb(t.background(r, fade, sister, demon))
			ch := ' '
			if t.rng.Float64() < chance {
				ch = flake
			}
			t.screen.SetContent(x, y, ch, nil, tcell.StyleDefault.Background(bg).Foreground(tcell.ColorWhite))
		}
	}

	npcs := round.NPCs
	t.plot(w, rows, me.Position, npcs.SisterPosition(), 'S', warmStyle)
	positions, ok := npcs.LiveDemons()
	for id, p := range positions {
		if !ok[id] {
			continue
		}
		style := redStyle.Bold(false)
		if npcs.DemonMode(id) == components.ModeChasing {
			style = redStyle
		}
		t.plot(w, rows, me.Position, p, 'D', style)
	}
	t.plot(w, rows, me.Position, me.Position, '@', inkStyle.Bold(true))
}

// snowGlyph picks a flake that leans with the wind.
func snowGlyph(gust, strength float64) rune {
	switch {
	case gust > strength/2:
		return '\\'
	case gust < -strength/2:
		return '/'
	}
	return '·'
}

// plot draws glyph at world position p if it is on screen and inside the fog.
func (t *tui) plot(w, rows int, from, p r3.Vec, glyph rune, style tcell.Style) {
	if r3.Norm(r3.Sub(p, from)) >= fogFar {
		return
	}
	sx, sy := t.view.WorldToScreen(p)
	x, y := int(math.Floor(float64(sx)*2)), int(math.Floor(float64(sy)))
	if x < 0 || y < 0 || x >= w || y >= rows {
		return
	}
	_, _, under, _ := t.screen.GetContent(x, y)
	_, bg, _ := under.Decompose()
	t.screen.SetContent(x, y, glyph, nil, style.Background(bg))
}

func (t *tui) fill(w, h int, c colorful.Color) {
	style := tcell.StyleDefault.Background(rgb(c))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			t.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (t *tui) drawStatus(w, h int) {
	round := t.game.Round()
	status := fmt.Sprintf(" %s   slain %d/%d", t.clockText, round.KillCount(), round.NPCs.DemonCount())
	if t.game.Discovered() {
		status += "   she is close"
	}
	t.text(0, h-2, status, hlStyle)

	if g := t.game.Gauge(); g.Active() {
		t.text(0, h-1, " STRIKE "+gaugeBar(40, t.cfg.Minigame.SuccessMin, t.cfg.Minigame.SuccessMax, g.Needle())+" "+resultText(g.Result()), redStyle)
	}
}

// gaugeBar renders the gauge as text: '=' marks the success zone and '|'
// the needle.
func gaugeBar(width int, zoneMin, zoneMax, needle float64) string {
	var b strings.Builder
	b.WriteByte('[')
	n := min(int(needle*float64(width)), width-1)
	for i := 0; i < width; i++ {
		p := (float64(i) + 0.5) / float64(width)
		switch {
		case i == n:
			b.WriteByte('|')
		case p >= zoneMin && p <= zoneMax:
			b.WriteByte('=')
		default:
			b.WriteByte('-')
		}
	}
	b.WriteByte(']')
	return b.String()
}

func resultText(r minigame.Result) string {
	switch r {
	case minigame.ResultSuccess:
		return "HIT"
	case minigame.ResultFail:
		return "MISS"
	}
	return "press space in the ="
}

func (t *tui) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (t *tui) center(y int, s string, style tcell.Style) {
	w, _ := t.screen.Size()
	t.text((w-len([]rune(s)))/2, y, s, style)
}

// run drives the frontend until the player quits. Events arrive on their
// own goroutine; ticks run on a ~60 Hz ticker.
func (t *tui) run(clk clock.Clock) {
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	last := clk.Now()
	for !t.quit {
		select {
		case ev := <-events:
			t.handle(ev, clk.Now())
		case <-ticker.C:
			now := clk.Now()
			t.frame(now.Sub(last).Seconds(), now)
			last = now
		}
	}
}
