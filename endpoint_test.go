package xnet_test

import (
	xnet "github.com/kala13x/libxutils-sub001"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Endpoint validation", func() {
	Context("role and protocol", func() {
		It("rejects an endpoint with no role", func() {
			ep := xnet.Endpoint{Addr: "127.0.0.1", Port: 8080}
			Expect(ep.Validate()).To(MatchError(xnet.ErrInvalidRole))
		})

		It("rejects an endpoint with an out-of-range protocol", func() {
			ep := xnet.Endpoint{Role: xnet.RoleServer, Protocol: xnet.Protocol(99), Addr: "127.0.0.1", Port: 8080}
			Expect(ep.Validate()).To(MatchError(xnet.ErrInvalidProtocol))
		})
	})

	Context("Server and Client endpoints", func() {
		It("requires a non-empty addr", func() {
			ep := xnet.Endpoint{Role: xnet.RoleServer, Port: 8080}
			Expect(ep.Validate()).To(MatchError(xnet.ErrMissingAddr))
		})

		It("requires a positive port for non-unix endpoints", func() {
			ep := xnet.Endpoint{Role: xnet.RoleServer, Addr: "127.0.0.1"}
			Expect(ep.Validate()).To(MatchError(xnet.ErrInvalidPort))
		})

		It("allows a zero port for a unix-domain endpoint", func() {
			ep := xnet.Endpoint{Role: xnet.RoleServer, Addr: "/tmp/xnet.sock", Unix: true}
			Expect(ep.Validate()).To(Succeed())
		})

		It("accepts a fully specified TCP server endpoint", func() {
			ep := xnet.Endpoint{Role: xnet.RoleServer, Protocol: xnet.ProtoHTTP, Addr: "0.0.0.0", Port: 8080}
			Expect(ep.Validate()).To(Succeed())
		})
	})

	Context("Peer and Custom endpoints", func() {
		It("requires a valid fd", func() {
			ep := xnet.Endpoint{Role: xnet.RolePeer}
			Expect(ep.Validate()).To(MatchError(xnet.ErrMissingFD))
		})

		It("accepts a peer endpoint carrying a pre-existing fd", func() {
			ep := xnet.Endpoint{Role: xnet.RolePeer, FD: 7}
			Expect(ep.Validate()).To(Succeed())
		})
	})

	Context("TLS endpoints", func() {
		It("requires cert and key paths when tls is enabled", func() {
			ep := xnet.Endpoint{Role: xnet.RoleServer, Addr: "127.0.0.1", Port: 8443, TLS: true}
			Expect(ep.Validate()).To(MatchError(xnet.ErrMissingCerts))
		})

		It("accepts a TLS endpoint once cert and key paths are set", func() {
			ep := xnet.Endpoint{
				Role: xnet.RoleServer, Addr: "127.0.0.1", Port: 8443, TLS: true,
				Certs: xnet.CertBundle{CertPath: "server.crt", KeyPath: "server.key"},
			}
			Expect(ep.Validate()).To(Succeed())
		})
	})
})

var _ = Describe("WSAllowMissingKey default", func() {
	It("defaults to strict (false) on the zero-value Endpoint", func() {
		var ep xnet.Endpoint
		Expect(ep.WSAllowMissingKey).To(BeFalse())
	})
})
