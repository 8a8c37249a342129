// Package toxnet implements peer.Network on top of the toxcore library.
//
// toxcore reports activity through callbacks that may run on its own
// goroutines. The adapter converts every callback into a typed peer.Event
// and publishes it on a buffered channel that the session drains once per
// tick:
//
//	net, err := toxnet.New(toxnet.Options{Savedata: data, StartPort: 33445, EndPort: 34445})
//	if err != nil {
//		return err
//	}
//	defer net.Close()
//
//	for ev := range net.Events() {
//		// handle ev
//	}
package toxnet
