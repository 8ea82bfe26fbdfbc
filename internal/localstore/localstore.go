// Package localstore is the device-local persistence adapter. Tasks live
// under one key per device, each setting under its own key, mirroring the
// web client's local storage layout.
package localstore

import (
	"encoding/json"
	"log"

	"github.com/tidwall/gjson"

	"github.com/Sunilsolankiji/MyTasks/internal/kvstore"
	"github.com/Sunilsolankiji/MyTasks/internal/model"
	"github.com/Sunilsolankiji/MyTasks/internal/transfer"
)

type Adapter struct {
	kv     *kvstore.Store
	logger *log.Logger
}

func New(kv *kvstore.Store, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{kv: kv, logger: logger}
}

func tasksKey(deviceID string) string    { return "tasks:" + deviceID }
func settingKey(deviceID, name string) string { return name + ":" + deviceID }

// SaveTasks overwrites the device snapshot with the full task sequence.
func (a *Adapter) SaveTasks(deviceID string, tasks []model.Task) error {
	b, err := json.Marshal(tasks)
	if err != nil {
		return err
	}
	return a.kv.Set(tasksKey(deviceID), string(b))
}

// LoadTasks reads and validates the device snapshot. A corrupt snapshot is
// deleted and an empty sequence returned; corruption is recovery-transparent
// and never surfaces to the user.
func (a *Adapter) LoadTasks(deviceID string) []model.Task {
	raw, ok := a.kv.Get(tasksKey(deviceID))
	if !ok {
		return []model.Task{}
	}
	tasks, err := transfer.ValidateBatch([]byte(raw))
	if err != nil {
		a.logger.Printf("[localstore] dropping corrupt snapshot for device %s: %v", deviceID, err)
		_ = a.kv.Delete(tasksKey(deviceID))
		return []model.Task{}
	}
	return tasks
}

// ClearTasks removes the device snapshot. Reconciliation calls this after
// the merged set has been handed to the remote collection.
func (a *Adapter) ClearTasks(deviceID string) error {
	return a.kv.Delete(tasksKey(deviceID))
}

// SaveSettings writes each setting under its own key.
func (a *Adapter) SaveSettings(deviceID string, s model.Settings) error {
	put := func(name string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return a.kv.Set(settingKey(deviceID, name), string(b))
	}

	if err := put("projectName", s.ProjectName); err != nil {
		return err
	}
	if err := a.kv.Set(settingKey(deviceID, "sortKey"), string(s.SortKey)); err != nil {
		return err
	}
	if err := a.kv.Set(settingKey(deviceID, "sortDirection"), string(s.SortDirection)); err != nil {
		return err
	}
	if err := put("showWeatherWidget", s.ShowWeatherWidget); err != nil {
		return err
	}
	if err := put("isHeaderSticky", s.HeaderSticky); err != nil {
		return err
	}
	if err := put("isFilterBarSticky", s.FilterBarSticky); err != nil {
		return err
	}
	if s.Location == nil {
		return a.kv.Delete(settingKey(deviceID, "location"))
	}
	return put("location", s.Location)
}

// LoadSettings reads the per-key settings defensively: a missing or malformed
// value reverts to its hardcoded default rather than erroring.
func (a *Adapter) LoadSettings(deviceID string) model.Settings {
	s := model.DefaultSettings()

	if raw, ok := a.kv.Get(settingKey(deviceID, "projectName")); ok {
		if v := gjson.Parse(raw); v.Type == gjson.String && v.String() != "" {
			s.ProjectName = v.String()
		}
	}
	if raw, ok := a.kv.Get(settingKey(deviceID, "sortKey")); ok {
		if k := model.SortKey(raw); k.Valid() {
			s.SortKey = k
		}
	}
	if raw, ok := a.kv.Get(settingKey(deviceID, "sortDirection")); ok {
		if d := model.SortDirection(raw); d.Valid() {
			s.SortDirection = d
		}
	}
	if raw, ok := a.kv.Get(settingKey(deviceID, "showWeatherWidget")); ok {
		if v := gjson.Parse(raw); v.IsBool() {
			s.ShowWeatherWidget = v.Bool()
		}
	}
	if raw, ok := a.kv.Get(settingKey(deviceID, "isHeaderSticky")); ok {
		if v := gjson.Parse(raw); v.IsBool() {
			s.HeaderSticky = v.Bool()
		}
	}
	if raw, ok := a.kv.Get(settingKey(deviceID, "isFilterBarSticky")); ok {
		if v := gjson.Parse(raw); v.IsBool() {
			s.FilterBarSticky = v.Bool()
		}
	}
	if raw, ok := a.kv.Get(settingKey(deviceID, "location")); ok {
		if gjson.Valid(raw) && gjson.Get(raw, "name").Type == gjson.String {
			var loc model.Location
			if err := json.Unmarshal([]byte(raw), &loc); err == nil {
				s.Location = &loc
			} else {
				_ = a.kv.Delete(settingKey(deviceID, "location"))
			}
		} else {
			_ = a.kv.Delete(settingKey(deviceID, "location"))
		}
	}

	return s
}
