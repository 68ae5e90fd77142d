// Package sysfs reads and writes single-value device attributes such as
// /sys/class/hwmon/hwmon1/temp1_input.
//
// Every call opens, uses and closes its file; no handle outlives the call.
//
//	temp, err := sysfs.ReadInt("/sys/class/hwmon/hwmon1/temp1_input")
//	err = sysfs.WriteInt("/sys/devices/platform/applesmc.768/fan1_output", 2000)
//
// Attribute names follow the <prefix><index>_<attr> convention; Indices
// enumerates the distinct indices present in a device directory.
package sysfs
