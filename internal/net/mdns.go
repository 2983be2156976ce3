package net

import (
	"fmt"
	"os"

	"github.com/hashicorp/mdns"
	"github.com/pkg/errors"
)

const serviceType = "_sahayak._tcp"

// Advertise announces the mirror on port over mDNS. Close the returned
// server to withdraw the announcement.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, errors.Wrap(err, "hostname")
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"SAHAYAK Digital Board"})
	if err != nil {
		return nil, errors.Wrap(err, "create mdns service")
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, errors.Wrap(err, "start mdns server")
	}
	return server, nil
}

// Browse reports the address of every mirror announced on the network
// until the lookup times out.
func Browse(found func(addr string)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			found(fmt.Sprintf("%s:%d", e.AddrV4, e.Port))
		}
	}()
	err := mdns.Lookup(serviceType, entries)
	close(entries)
	<-done
	return errors.Wrap(err, "mdns lookup")
}
