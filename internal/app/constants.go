package app

// MinHumansToStartMatch defines how many human seats a match needs before
// the owner may start it; bots fill the remaining seats.
const MinHumansToStartMatch = 1
