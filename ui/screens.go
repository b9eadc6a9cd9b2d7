package ui

import (
	"errors"
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/whiteout/game"
	"github.com/pthm-cable/whiteout/ranking"
)

const (
	buttonW = 200
	buttonH = 40
)

// drawStart renders the title, the start button and the leaderboard.
func (a *App) drawStart() {
	t := a.renderer.Theme
	cx := a.screenW / 2
	top := a.screenH / 5

	a.renderer.DrawCenteredText("WHITEOUT", cx, top, t.TitleFontSize, t.Snow)
	a.renderer.DrawCenteredText("Find your sister in the storm. Do not let them reach you.", cx, top+t.TitleFontSize+12, t.FontSize, t.LabelColor)

	btn := rl.Rectangle{X: float32(cx - buttonW/2), Y: float32(top + t.TitleFontSize + 50), Width: buttonW, Height: buttonH}
	if gui.Button(btn, "Start") {
		a.begin()
	}

	a.hud.DrawRankings(cx-160, int32(btn.Y)+buttonH+30, 320, a.game.Board().Records(), -1)
	a.renderer.DrawCenteredText("WASD to walk, drag to look, SPACE to strike", cx, a.screenH-t.LineHeight-t.Padding, 14, t.LabelColor)
}

// drawEnded plays the end-of-round transition over the frozen scene, then
// shows the clear or game over screen.
func (a *App) drawEnded() {
	round := a.game.Round()
	clear := a.game.State() == game.StateClear

	progress, flash := a.game.Transition()
	if progress < 1 {
		a.world.Draw(round.NPCs, a.game.Player())
		a.tint.Draw(a.hints, a.screenW, a.screenH)
		rl.DrawRectangle(0, 0, a.screenW, a.screenH, rl.Fade(rl.Black, float32(progress)))
		if flash {
			c := rl.White
			if !clear {
				c = a.renderer.Theme.DemonColor
			}
			rl.DrawRectangle(0, 0, a.screenW, a.screenH, rl.Fade(c, 0.8))
		}
		return
	}

	rl.ClearBackground(rl.Black)
	if clear {
		a.drawClear(round.Duration())
	} else {
		a.drawGameOver(round.Duration())
	}
}

func (a *App) drawClear(secs float64) {
	t := a.renderer.Theme
	cx := a.screenW / 2
	y := a.screenH / 6

	a.renderer.DrawCenteredText("You found her", cx, y, t.TitleFontSize, t.SisterColor)
	y += t.TitleFontSize + 16
	a.renderer.DrawCenteredText(ranking.FormatPrecise(secs), cx, y, 32, t.ValueColor)
	y += 52

	if a.editing {
		rl.DrawText("Nickname", cx-buttonW, y+10, t.FontSize, t.LabelColor)
		box := rl.Rectangle{X: float32(cx - buttonW/2), Y: float32(y), Width: buttonW, Height: buttonH}
		gui.TextBox(box, &a.nickname, a.cfg.Ranking.MaxNickname, true)
		submit := rl.Rectangle{X: box.X + buttonW + 10, Y: box.Y, Width: 100, Height: buttonH}
		if gui.Button(submit, "Submit") || rl.IsKeyPressed(rl.KeyEnter) {
			a.submit()
		}
		y += buttonH + 20
	} else if a.rank > 0 {
		a.renderer.DrawCenteredText(fmt.Sprintf("Rank #%d", a.rank), cx, y+10, t.HeaderFontSize, t.SectionHeader)
		y += buttonH + 20
	}

	bottom := a.hud.DrawRankings(cx-160, y, 320, a.game.Board().Records(), a.rank)
	again := rl.Rectangle{X: float32(cx - buttonW/2), Y: float32(bottom + 20), Width: buttonW, Height: buttonH}
	if gui.Button(again, "Play again") {
		a.restart()
	}
}

func (a *App) submit() {
	rank, err := a.game.SubmitRecord(a.nickname)
	switch {
	case errors.Is(err, game.ErrAlreadySubmitted):
	case err != nil:
		a.logger.Error("submit record", "error", err)
	default:
		a.rank = rank
	}
	a.editing = false
}

func (a *App) drawGameOver(secs float64) {
	t := a.renderer.Theme
	cx := a.screenW / 2
	y := a.screenH / 3

	a.renderer.DrawCenteredText("The storm took you", cx, y, t.TitleFontSize, t.DemonColor)
	y += t.TitleFontSize + 16
	a.renderer.DrawCenteredText("Survived "+ranking.FormatClock(secs), cx, y, 24, t.LabelColor)
	y += 60

	retry := rl.Rectangle{X: float32(cx - buttonW/2), Y: float32(y), Width: buttonW, Height: buttonH}
	if gui.Button(retry, "Try again") {
		a.restart()
	}
}
