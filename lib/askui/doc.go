// Copyright 2026 The Promptkeep Authors
// SPDX-License-Identifier: Apache-2.0

// Package askui collects answers from the user.
//
// [Prompter] is the interface the askpass flow drives: one method per
// answer shape. [Confirm] asks a yes/no question; [AskSecret] collects
// a typed value, with or without echo, and optionally offers to
// remember it. Cancellation (end of input on the controlling
// terminal) is reported as [ErrCancelled] and maps to the helper's
// only failing exit path.
//
// [Terminal] implements Prompter on /dev/tty. ssh and git run askpass
// helpers with their own pipes on stdin/stdout, so the controlling
// terminal is addressed directly; stdout stays reserved for the
// answer. Hidden input uses term.ReadPassword to suppress echo.
package askui
