package computer

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// screenshotDelay lets the page settle before the post-action still frame
// is captured.
const screenshotDelay = 2 * time.Second

// RodConfig configures the Chrome-backed driver.
type RodConfig struct {
	// Width and Height set the page viewport, which is also the coordinate
	// space exposed to the remote service. Zero picks the WXGA target.
	Width  int
	Height int
	// StartURL is loaded into the page on startup.
	StartURL string
	Headless bool
	// ChromePath overrides the browser binary when set.
	ChromePath string
	Logger     zerolog.Logger
}

// RodDriver drives a Chrome page over CDP. Viewports at or below their
// scaling target map 1:1 onto page coordinates; larger viewports advertise
// the matched target as the coordinate space, with screenshots downscaled
// and coordinates mapped through the Scaler.
type RodDriver struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	scaler   Scaler
	logger   zerolog.Logger
}

// NewRodDriver launches Chrome and opens the driving page.
func NewRodDriver(cfg RodConfig) (*RodDriver, error) {
	width, height := cfg.Width, cfg.Height
	if width <= 0 || height <= 0 {
		width, height = 1280, 800
	}

	l := launcher.New().Headless(cfg.Headless)
	if cfg.ChromePath != "" {
		l = l.Bin(cfg.ChromePath)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:  width,
		Height: height,
	}); err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	if cfg.StartURL != "" {
		if err := page.Navigate(cfg.StartURL); err != nil {
			cfg.Logger.Warn().Err(err).Str("url", cfg.StartURL).Msg("Failed to load start URL")
		} else if err := page.WaitLoad(); err != nil {
			cfg.Logger.Warn().Err(err).Msg("Start page did not finish loading")
		}
	}

	scaler := ScalerFor(width, height)
	event := cfg.Logger.Info().Int("width", width).Int("height", height)
	if scaler.Target != nil {
		event = event.Str("scaling_target", scaler.Target.Name)
	}
	event.Msg("Display driver ready")

	return &RodDriver{
		browser:  browser,
		page:     page,
		launcher: l,
		scaler:   scaler,
		logger:   cfg.Logger,
	}, nil
}

// Size returns the advertised coordinate space: the scaling target when one
// is in effect, the raw viewport otherwise.
func (d *RodDriver) Size() (int, int) {
	if t := d.scaler.Target; t != nil {
		return t.Width, t.Height
	}
	return d.scaler.Width, d.scaler.Height
}

// Close shuts the browser down.
func (d *RodDriver) Close() error {
	err := d.browser.Close()
	d.launcher.Kill()
	return err
}

// Do executes one action and, for state-changing actions, attaches a
// post-action screenshot so the service sees the effect without asking.
func (d *RodDriver) Do(ctx context.Context, act Action) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	switch act.Action {
	case ActionScreenshot:
		return d.screenshot()

	case ActionCursorPosition:
		pos := d.page.Mouse.Position()
		x, y, err := d.scaler.Scale(SourceScreen, round(pos.X), round(pos.Y))
		if err != nil {
			return Result{}, err
		}
		return Result{Output: fmt.Sprintf("X=%d,Y=%d", x, y)}, nil

	case ActionWait:
		duration := act.Duration
		if duration <= 0 {
			duration = 1
		}
		if duration > 30 {
			return Result{}, fmt.Errorf("wait duration %.1fs exceeds the 30s limit", duration)
		}
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(time.Duration(duration * float64(time.Second))):
		}
		return d.screenshot()

	case ActionKey:
		if act.Text == "" {
			return Result{}, fmt.Errorf("text is required for key")
		}
		keys, err := parseCombo(act.Text)
		if err != nil {
			return Result{}, err
		}
		actions := d.page.KeyActions()
		if len(keys) > 1 {
			actions = actions.Press(keys[:len(keys)-1]...)
		}
		if err := actions.Type(keys[len(keys)-1]).Do(); err != nil {
			return Result{}, fmt.Errorf("key %q failed: %w", act.Text, err)
		}
		return d.settleAndShoot()

	case ActionType:
		if act.Text == "" {
			return Result{}, fmt.Errorf("text is required for type")
		}
		if err := d.page.InsertText(act.Text); err != nil {
			return Result{}, fmt.Errorf("type failed: %w", err)
		}
		return d.settleAndShoot()

	case ActionMouseMove:
		x, y, err := d.resolve(act.Coordinate)
		if err != nil {
			return Result{}, err
		}
		if err := d.page.Mouse.MoveTo(proto.Point{X: float64(x), Y: float64(y)}); err != nil {
			return Result{}, fmt.Errorf("mouse move failed: %w", err)
		}
		return d.settleAndShoot()

	case ActionLeftClick:
		return d.click(act.Coordinate, proto.InputMouseButtonLeft, 1)
	case ActionRightClick:
		return d.click(act.Coordinate, proto.InputMouseButtonRight, 1)
	case ActionMiddleClick:
		return d.click(act.Coordinate, proto.InputMouseButtonMiddle, 1)
	case ActionDoubleClick:
		return d.click(act.Coordinate, proto.InputMouseButtonLeft, 2)
	case ActionTripleClick:
		return d.click(act.Coordinate, proto.InputMouseButtonLeft, 3)

	case ActionLeftClickDrag:
		startX, startY, err := d.resolve(act.StartCoordinate)
		if err != nil {
			return Result{}, fmt.Errorf("start_coordinate: %w", err)
		}
		endX, endY, err := d.resolve(act.Coordinate)
		if err != nil {
			return Result{}, err
		}
		mouse := d.page.Mouse
		if err := mouse.MoveTo(proto.Point{X: float64(startX), Y: float64(startY)}); err != nil {
			return Result{}, fmt.Errorf("drag failed: %w", err)
		}
		if err := mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
			return Result{}, fmt.Errorf("drag failed: %w", err)
		}
		if err := mouse.MoveTo(proto.Point{X: float64(endX), Y: float64(endY)}); err != nil {
			return Result{}, fmt.Errorf("drag failed: %w", err)
		}
		if err := mouse.Up(proto.InputMouseButtonLeft, 1); err != nil {
			return Result{}, fmt.Errorf("drag failed: %w", err)
		}
		return d.settleAndShoot()

	case ActionScroll:
		x, y, err := d.resolve(act.Coordinate)
		if err != nil {
			return Result{}, err
		}
		amount := act.ScrollAmount
		if amount <= 0 {
			amount = 3
		}
		var dx, dy float64
		switch act.ScrollDirection {
		case "up":
			dy = -float64(amount) * 100
		case "down":
			dy = float64(amount) * 100
		case "left":
			dx = -float64(amount) * 100
		case "right":
			dx = float64(amount) * 100
		default:
			return Result{}, fmt.Errorf("invalid scroll_direction %q", act.ScrollDirection)
		}
		if err := d.page.Mouse.MoveTo(proto.Point{X: float64(x), Y: float64(y)}); err != nil {
			return Result{}, fmt.Errorf("scroll failed: %w", err)
		}
		if err := d.page.Mouse.Scroll(dx, dy, 1); err != nil {
			return Result{}, fmt.Errorf("scroll failed: %w", err)
		}
		return d.settleAndShoot()

	default:
		return Result{}, fmt.Errorf("unsupported action %q", act.Action)
	}
}

// click moves to the coordinate and clicks count times.
func (d *RodDriver) click(coordinate []int, button proto.InputMouseButton, count int) (Result, error) {
	x, y, err := d.resolve(coordinate)
	if err != nil {
		return Result{}, err
	}
	if err := d.page.Mouse.MoveTo(proto.Point{X: float64(x), Y: float64(y)}); err != nil {
		return Result{}, fmt.Errorf("click failed: %w", err)
	}
	if err := d.page.Mouse.Click(button, count); err != nil {
		return Result{}, fmt.Errorf("click failed: %w", err)
	}
	return d.settleAndShoot()
}

// resolve validates and maps a wire coordinate onto the page.
func (d *RodDriver) resolve(coordinate []int) (int, int, error) {
	x, y, err := point(coordinate)
	if err != nil {
		return 0, 0, err
	}
	return d.scaler.Scale(SourceAPI, x, y)
}

// settleAndShoot waits for the page to settle and captures a still frame.
func (d *RodDriver) settleAndShoot() (Result, error) {
	time.Sleep(screenshotDelay)
	return d.screenshot()
}

// screenshot captures the viewport as base64 PNG, downscaled to the scaling
// target when one is in effect so the image matches the advertised
// coordinate space.
func (d *RodDriver) screenshot() (Result, error) {
	var req *proto.PageCaptureScreenshot
	if t := d.scaler.Target; t != nil {
		req = &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
			Clip: &proto.PageViewport{
				Width:  float64(d.scaler.Width),
				Height: float64(d.scaler.Height),
				Scale:  float64(t.Width) / float64(d.scaler.Width),
			},
		}
	}
	data, err := d.page.Screenshot(false, req)
	if err != nil {
		return Result{}, fmt.Errorf("screenshot failed: %w", err)
	}
	return Result{Image: base64.StdEncoding.EncodeToString(data)}, nil
}
