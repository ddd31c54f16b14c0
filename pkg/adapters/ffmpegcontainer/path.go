package ffmpegcontainer

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// FindFFmpeg locates the ffmpeg binary. A non-empty custom path wins and must exist.
func FindFFmpeg(custom string) (string, error) {
	return findTool("ffmpeg", custom, ErrFFmpegNotFound)
}

// FindFFprobe locates the ffprobe binary. A non-empty custom path wins and must exist.
func FindFFprobe(custom string) (string, error) {
	return findTool("ffprobe", custom, ErrFFprobeNotFound)
}

func findTool(name, custom string, notFound error) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", notFound, custom)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName = name + ".exe"
	}

	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonDirs []string
	if runtime.GOOS == "windows" {
		commonDirs = []string{
			`C:\ffmpeg\bin`,
			`C:\Program Files\ffmpeg\bin`,
			`C:\Program Files (x86)\ffmpeg\bin`,
		}
	} else {
		commonDirs = []string{
			"/usr/bin",
			"/usr/local/bin",
			"/opt/homebrew/bin",
			"/snap/bin",
		}
	}

	for _, dir := range commonDirs {
		p := dir + string(os.PathSeparator) + execName
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", notFound
}
