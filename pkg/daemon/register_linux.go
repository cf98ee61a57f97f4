package daemon

// Daemon registration uses a systemd user unit, managed with systemctl
// --user. Registered daemons are supervised by systemd, gaining automatic
// restart on failure.

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/nfd2nfc/nfd2nfc/pkg/filesystem"
)

// RegistrationSupported indicates whether or not daemon registration is
// supported on this platform.
const RegistrationSupported = true

const systemdUnitTemplate = `[Unit]
Description=nfd2nfc filename normalization daemon

[Service]
ExecStart=%s daemon run
Restart=on-failure

[Install]
WantedBy=default.target
`

const (
	// systemdUserDirectoryPermissions are the permissions to use for user
	// unit directory creation in the event that it does not exist.
	systemdUserDirectoryPermissions = 0755
	// systemdUnitName is the name of the systemd user unit to create to
	// register the daemon for automatic startup.
	systemdUnitName = "nfd2nfc.service"
	// systemdUnitPermissions are the permissions to use for the systemd user
	// unit file.
	systemdUnitPermissions = 0644
)

// systemdUnitPath computes the path to the systemd user unit file.
func systemdUnitPath() (string, error) {
	// Respect XDG_CONFIG_HOME if set, since that's where systemd looks for
	// user units.
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "unable to compute path to home directory")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "systemd", "user", systemdUnitName), nil
}

// systemctl runs a systemctl --user subcommand with output forwarded.
func systemctl(arguments ...string) error {
	command := exec.Command("systemctl", append([]string{"--user"}, arguments...)...)
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	return command.Run()
}

// Register performs automatic daemon startup registration.
func Register() error {
	// If we're already registered, don't do anything.
	if registered, err := registered(); err != nil {
		return errors.Wrap(err, "unable to determine registration status")
	} else if registered {
		return nil
	}

	// Acquire the daemon lock to ensure the daemon isn't running. The start
	// and stop mechanism switches on registration status, so registration
	// must not change under a daemon started with the other mechanism.
	lock, err := AcquireLock()
	if err != nil {
		return errors.New("unable to alter registration while daemon is running")
	}
	defer lock.Release()

	// Compute the unit path and ensure its directory exists.
	unitPath, err := systemdUnitPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(unitPath), systemdUserDirectoryPermissions); err != nil {
		return errors.Wrap(err, "unable to create user unit directory")
	}

	// Format the unit against the current executable and write it.
	executablePath, err := os.Executable()
	if err != nil {
		return errors.Wrap(err, "unable to determine executable path")
	}
	unit := fmt.Sprintf(systemdUnitTemplate, executablePath)
	if err := filesystem.WriteFileAtomic(unitPath, []byte(unit), systemdUnitPermissions); err != nil {
		return errors.Wrap(err, "unable to write systemd user unit")
	}

	// Make systemd aware of the unit and enable it for automatic startup.
	if err := systemctl("daemon-reload"); err != nil {
		return errors.Wrap(err, "unable to reload systemd configuration")
	}
	if err := systemctl("enable", systemdUnitName); err != nil {
		return errors.Wrap(err, "unable to enable systemd user unit")
	}

	// Success.
	return nil
}

// Unregister performs automatic daemon startup de-registration.
func Unregister() error {
	// If we're not registered, don't do anything.
	if registered, err := registered(); err != nil {
		return errors.Wrap(err, "unable to determine registration status")
	} else if !registered {
		return nil
	}

	// Acquire the daemon lock to ensure the daemon isn't running.
	lock, err := AcquireLock()
	if err != nil {
		return errors.New("unable to alter registration while daemon is running")
	}
	defer lock.Release()

	// Disable the unit, remove it, and make systemd forget it. Disabling can
	// fail if systemd already considers the unit gone, which isn't fatal to
	// de-registration.
	if err := systemctl("disable", systemdUnitName); err != nil {
		fmt.Fprintln(os.Stderr, "warning: unable to disable systemd user unit")
	}
	unitPath, err := systemdUnitPath()
	if err != nil {
		return err
	}
	if err := os.Remove(unitPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "unable to remove systemd user unit")
	}
	if err := systemctl("daemon-reload"); err != nil {
		return errors.Wrap(err, "unable to reload systemd configuration")
	}

	// Success.
	return nil
}

// registered determines whether or not automatic daemon startup is currently
// registered.
func registered() (bool, error) {
	unitPath, err := systemdUnitPath()
	if err != nil {
		return false, err
	}
	if info, err := os.Lstat(unitPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "unable to query systemd user unit")
	} else if !info.Mode().IsRegular() {
		return false, errors.New("unexpected contents at systemd user unit path")
	}
	return true, nil
}

// RegisteredStart potentially handles daemon start operations if the daemon
// is registered for automatic start with the system. It returns false if the
// start operation was not handled and should be handled by the normal start
// command.
func RegisteredStart() (bool, error) {
	if registered, err := registered(); err != nil {
		return false, errors.Wrap(err, "unable to determine daemon registration status")
	} else if !registered {
		return false, nil
	}
	if err := systemctl("start", systemdUnitName); err != nil {
		return false, errors.Wrap(err, "unable to start systemd user unit")
	}
	return true, nil
}

// RegisteredStop potentially handles daemon stop operations if the daemon is
// registered for automatic start with the system. It returns false if the
// stop operation was not handled and should be handled by the normal stop
// command.
func RegisteredStop() (bool, error) {
	if registered, err := registered(); err != nil {
		return false, errors.Wrap(err, "unable to determine daemon registration status")
	} else if !registered {
		return false, nil
	}
	if err := systemctl("stop", systemdUnitName); err != nil {
		return false, errors.Wrap(err, "unable to stop systemd user unit")
	}
	return true, nil
}
