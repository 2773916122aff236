// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package gen contains generators for common
// kinds of formulas, built as terms.
//
// Package gen also supplies a random session, which returns
// random results within a random period of time.
package gen
