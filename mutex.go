//go:build !gom_lockdebug

package gom

import "sync"

type rwMutex = sync.RWMutex
