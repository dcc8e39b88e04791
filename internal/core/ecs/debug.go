//go:build ecsdebug

package ecs

const typeChecks = true
