package perks

// Log Messages
const (
	LogMsgUserConnected     = "User session loaded"
	LogMsgUserDisconnected  = "User session unloaded"
	LogMsgRollResolved      = "Roll resolved"
	LogMsgRollFailed        = "Roll failed"
	LogMsgPerkAssigned      = "Perk assigned"
	LogMsgPerkRemoved       = "Perk removed"
	LogMsgPerkUpgraded      = "Perk upgraded"
	LogMsgBoostersReapplied = "Boosters reapplied for loaded users"
)
