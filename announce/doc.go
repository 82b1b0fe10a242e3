// Package announce carries wallet discovery broadcasts inside one process.
//
// A Bus plays the role of the shared event target that wallets and dapps use
// to find each other. Wallets announce themselves and re-announce whenever a
// dapp asks for providers:
//
//	bus := announce.NewBus()
//	withdraw := announce.Advertise(bus, detail)
//	defer withdraw()
//
//	proxy := provider.NewProxy(provider.WithAnnouncer(bus))
package announce
