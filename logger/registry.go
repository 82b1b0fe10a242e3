package logger

import "sync"

// components maps component names to their tagged loggers.
var components = struct {
	sync.RWMutex
	byName map[string]*Logger
}{byName: make(map[string]*Logger)}

// Register pins l as the logger Get returns for name.
func Register(name string, l *Logger) {
	components.Lock()
	components.byName[name] = l
	components.Unlock()
}

// RegisterDefaults pins a logger tagged with each name, derived from the
// current global logger. Call it after Init so the loggers share its sink.
func RegisterDefaults(names ...string) {
	base := GetGlobalLogger()
	components.Lock()
	defer components.Unlock()
	for _, name := range names {
		components.byName[name] = base.WithComponent(name)
	}
}

// Get returns the logger registered for name. Unregistered names get the
// global logger tagged with name.
func Get(name string) *Logger {
	components.RLock()
	l, ok := components.byName[name]
	components.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// resetComponents drops every registered logger. Init calls it so loggers
// registered against an earlier sink are not handed out again.
func resetComponents() {
	components.Lock()
	components.byName = make(map[string]*Logger)
	components.Unlock()
}
