package announce

import "github.com/kbukum/walletmux/provider"

// Advertise announces d on bus now and again on every request for providers.
// The returned func stops answering requests; it does not retract earlier
// announcements.
func Advertise(bus *Bus, d provider.Detail) (withdraw func()) {
	unsubscribe := bus.OnRequestProviders(func() { bus.Announce(d) })
	bus.Announce(d)
	return unsubscribe
}
