package player

// appleMusicScript prints one raw line for the Music app, or STOPPED.
const appleMusicScript = `
tell application "Music"
	if not (it is running) then
		return "STOPPED"
	end if

	set ps to player state as text
	if ps is not "playing" and ps is not "paused" then
		return "STOPPED"
	end if

	set t to current track
	return (name of t) & "||" & (artist of t) & "||" & (album of t) & "||" & ps & "||" & (player position) & "||" & (duration of t)
end tell
`

// NewAppleMusicSource queries the macOS Music app through osascript.
func NewAppleMusicSource() CommandSource {
	return CommandSource{Argv: []string{"osascript", "-e", appleMusicScript}}
}
