package remote

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/vk/tweakrunner/internal/host"
	"github.com/vk/tweakrunner/internal/runner"
	"github.com/vk/tweakrunner/internal/settings"
	"github.com/vk/tweakrunner/internal/ui"
)

// Inbound event names.
const (
	EventToggle     = "toggle"
	EventUpdate     = "update"
	EventGUI        = "gui"
	EventHideGUI    = "hide_gui"
	EventSave       = "save"
	EventSetEnabled = "set_enabled"
	EventStatus     = "status"
)

// Outbound event names.
const (
	ReplyToggled = "toggled"
	ReplyGUI     = "gui"
	ReplyEnabled = "set_enabled"
	ReplyStatus  = "status"
	ReplyError   = "bridge_error"
)

// Inbound lists the events the bridge listens for.
var Inbound = []string{EventToggle, EventUpdate, EventGUI, EventHideGUI, EventSave, EventSetEnabled, EventStatus}

// Controls is the part of the runner the bridge drives directly.
type Controls interface {
	SetEnabled(name string, on bool) error
	Status() []runner.Status
}

// Event is one inbound socket.io event.
type Event struct {
	Name string
	Args []any
}

// Reply is an event to emit back.
type Reply struct {
	Event   string
	Payload any
}

// Dispatcher maps events onto host callbacks and runner controls.
type Dispatcher struct {
	entry    *host.Entry
	controls Controls
	logger   *slog.Logger
	frame    *ui.Text
}

// NewDispatcher creates a dispatcher over entry and controls.
func NewDispatcher(entry *host.Entry, controls Controls, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{entry: entry, controls: controls, logger: logger, frame: ui.NewText()}
}

// Handle runs one event and returns the reply to emit, if any.
func (d *Dispatcher) Handle(ev Event) (Reply, bool) {
	d.logger.Debug("Dispatching remote event.", "event", ev.Name, "args", len(ev.Args))

	switch ev.Name {
	case EventToggle:
		on, err := boolArg(ev.Args, 0)
		if err != nil {
			return errorReply(ev, err), true
		}
		ok := false
		if d.entry.OnToggle != nil {
			ok = d.entry.OnToggle(on)
		}
		return Reply{Event: ReplyToggled, Payload: map[string]any{"on": on, "ok": ok}}, true

	case EventUpdate:
		dt, err := floatArg(ev.Args, 0)
		if err != nil {
			return errorReply(ev, err), true
		}
		if d.entry.OnUpdate != nil {
			d.entry.OnUpdate(dt)
		}
		return Reply{}, false

	case EventGUI:
		if len(ev.Args) > 0 {
			presses, ok := ev.Args[0].([]any)
			if !ok {
				return errorReply(ev, fmt.Errorf("argument 0 must be a list of control ids, got %T", ev.Args[0])), true
			}
			for _, p := range presses {
				if id, ok := p.(string); ok {
					d.frame.Press(id)
				}
			}
		}
		d.frame.Reset()
		if d.entry.OnGUI != nil {
			d.entry.OnGUI(d.frame)
		}
		return Reply{Event: ReplyGUI, Payload: map[string]any{"lines": d.frame.Lines()}}, true

	case EventHideGUI:
		if d.entry.OnHideGUI != nil {
			d.entry.OnHideGUI()
		}
		return Reply{}, false

	case EventSave:
		if d.entry.OnSaveGUI != nil {
			d.entry.OnSaveGUI()
		}
		return Reply{}, false

	case EventSetEnabled:
		req, err := mapArg(ev.Args, 0)
		if err != nil {
			return errorReply(ev, err), true
		}
		name, _ := req["name"].(string)
		on, _ := req["enabled"].(bool)
		payload := map[string]any{"name": name, "enabled": on}
		if err := d.controls.SetEnabled(name, on); err != nil {
			payload["error"] = err.Error()
		}
		return Reply{Event: ReplyEnabled, Payload: payload}, true

	case EventStatus:
		return Reply{Event: ReplyStatus, Payload: d.status()}, true
	}

	return errorReply(ev, fmt.Errorf("unknown event")), true
}

func (d *Dispatcher) status() []map[string]any {
	var out []map[string]any
	for _, st := range d.controls.Status() {
		item := map[string]any{
			"name":      st.Name,
			"key":       st.Key,
			"depth":     st.Depth,
			"enabled":   st.Enabled,
			"expanded":  st.Expanded,
			"active":    st.Active,
			"always_on": st.AlwaysOn,
			"overrides": st.Overrides,
		}
		if st.Err != nil {
			item["error"] = st.Err.Error()
		}
		if raw, err := settings.SnapshotJSON(st.Settings); err != nil {
			d.logger.Warn("Failed to snapshot settings.", "tweak", st.Name, "error", err)
		} else {
			var fields map[string]any
			if err := json.Unmarshal(raw, &fields); err == nil {
				item["settings"] = fields
			}
		}
		out = append(out, item)
	}
	return out
}

func errorReply(ev Event, err error) Reply {
	return Reply{Event: ReplyError, Payload: map[string]any{"event": ev.Name, "error": err.Error()}}
}

func boolArg(args []any, i int) (bool, error) {
	if len(args) <= i {
		return false, fmt.Errorf("missing argument %d", i)
	}
	v, ok := args[i].(bool)
	if !ok {
		return false, fmt.Errorf("argument %d must be a bool, got %T", i, args[i])
	}
	return v, nil
}

func floatArg(args []any, i int) (float64, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing argument %d", i)
	}
	switch v := args[i].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, fmt.Errorf("argument %d must be a number, got %T", i, args[i])
}

func mapArg(args []any, i int) (map[string]any, error) {
	if len(args) <= i {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	v, ok := args[i].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument %d must be an object, got %T", i, args[i])
	}
	return v, nil
}
