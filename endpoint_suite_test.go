package xnet_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// TestXnetEndpointSuite runs the endpoint/config-validation BDD suite.
// Organized the way nabbar-golib/socket/config's ginkgo suite is: one
// bootstrap file registering the fail handler and running specs, the
// actual Describe/Context/It blocks live in endpoint_test.go.
func TestXnetEndpointSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "xnet Endpoint Configuration Suite")
}
