// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package smbios provides typed calls into the master's smbios
// execution module, which reads DMI hardware inventory records from
// minions.
package smbios

import (
	"github.com/salt-netapi/saltapi/calls"
)

// RecordType is a DMI record type code as defined by the SMBIOS
// specification, used to filter records queries.
type RecordType int

const (
	BIOS RecordType = iota
	System
	Baseboard
	Chassis
	Processor
	MemoryController
	MemoryModule
	Cache
	PortConnector
	SystemSlots
	OnBoardDevices
	OEMStrings
	SystemConfigurationOptions
	BIOSLanguage
	GroupAssociations
	SystemEventLog
	PhysicalMemoryArray
	MemoryDevice
	Bit32MemoryError
	MemoryArrayMappedAddress
	MemoryDeviceMappedAddress
	BuiltinPointingDevice
	PortableBattery
	SystemReset
	HardwareSecurity
	SystemPowerControls
	VoltageProbe
	CoolingDevice
	TemperatureProbe
	ElectricalCurrentProbe
	OutOfBandRemoteAccess
	BootIntegrityServices
	SystemBoot
	Bit64MemoryError
	ManagementDevice
	ManagementDeviceComponent
	ManagementDeviceThresholdData
	MemoryChannel
	IPMIDevice
	PowerSupply
	AdditionalInformation
	OnboardDevicesExtendedInformation
	ManagementControllerHostInterface
)

// Record holds one DMI record as returned by smbios.records.
type Record struct {
	Data        map[string]interface{} `json:"data"`
	Description string                 `json:"description"`
	Handle      string                 `json:"handle"`
	Type        int                    `json:"type"`
}

// Records builds the call for smbios.records. recType filters the query
// to one record type; pass nil to fetch all records, in which case no
// rec_type argument is sent at all.
func Records(recType *RecordType) calls.LocalCall[[]Record] {
	kwargs := make(map[string]interface{})
	if recType != nil {
		kwargs["rec_type"] = int(*recType)
	}
	kwargs["clean"] = false
	return calls.NewLocalCall[[]Record]("smbios.records", nil, kwargs)
}

// Get builds the call for smbios.get, returning the single clean value
// of one DMI string (e.g. "system-uuid").
func Get(str string) calls.LocalCall[string] {
	return calls.NewLocalCall[string]("smbios.get", []interface{}{str}, nil)
}
