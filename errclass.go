/*
 * Copyright (c) 2018 The Go Authors. All rights reserved.
 * Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.
 */

package xnet

import "github.com/kala13x/libxutils-sub001/errclass"

// classify is the façade's single entry point for turning a raw
// socket.Read/Write error into the decision it needs: retry, treat as a
// clean close, report a timeout, or surface fatally. It is a thin
// root-level wrapper over the errclass subpackage so call sites in
// dispatch.go read as "xnet business logic" without an extra import line
// scattered through the file; the classification tables themselves live
// in errclass, split by OS exactly as bassosimone-nop's errclassifier.go
// + errclass/ package are split.
func classify(err error) errclass.Class {
	return errclass.Default.Classify(err)
}
