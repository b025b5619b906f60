package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// DSNValue builds a MySQL DSN from the discrete connection fields unless an
// explicit DSN is configured.
func (c DatabaseRuntimeConfig) DSNValue() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	if v := strings.TrimSpace(c.DSN); v != "" {
		return v
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Name
	mc.ParseTime = c.ParseTime
	mc.Params = map[string]string{"charset": c.Charset}
	for key, value := range c.Params {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			mc.Params[k] = v
		}
	}
	if c.Loc != "" {
		if loc, err := time.LoadLocation(c.Loc); err == nil {
			mc.Loc = loc
		}
	}
	return mc.FormatDSN()
}
