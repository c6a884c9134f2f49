package emit

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nest-os/nest/config"
	"github.com/pkg/errors"
)

// Header of the users file.
const (
	UsersFormat  = "nest-users"
	UsersVersion = 1
)

// Users writes one block per user, separated by blank lines:
//
//	#format,nest-users
//	#version,1
//	|ada-lovelace,fullName,Ada Lovelace
//	,homeDir,/home/ada-lovelace
//	,manageHome,true
//	,shell,/bin/bash
//	,groups,ada-lovelace,wheel
func Users(w io.Writer, users []config.User) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "#format,%s\n", UsersFormat)
	fmt.Fprintf(&buf, "#version,%d\n", UsersVersion)
	for i, u := range users {
		if i > 0 {
			buf.WriteByte('\n')
		}
		fmt.Fprintf(&buf, "|%s,fullName,%s\n", u.Username, u.FullName)
		fmt.Fprintf(&buf, ",homeDir,%s\n", u.HomeDir)
		fmt.Fprintf(&buf, ",manageHome,%s\n", strconv.FormatBool(u.ManageHome))
		if u.Shell != "" {
			fmt.Fprintf(&buf, ",shell,%s\n", u.Shell)
		}
		fmt.Fprintf(&buf, ",groups,%s\n", strings.Join(u.Groups, ","))
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "write users")
}
