package model

// Package model defines domain data structures shared by the bot flows:
// resolved sources and their transfer options, collections, download tasks,
// and the status enums driving their state transitions.
