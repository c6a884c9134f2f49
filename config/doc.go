// Package config provides the machine description that nest compiles, and
// the rules that turn a partially specified description into a complete one.
//
// A Config is the aggregate root. It owns a Locale and a list of Users. Every
// type can be constructed with any subset of its fields set; the
// corresponding constructor (NewLocale, NewUser, New) fills in the rest:
//
//  cfg := config.New(config.Config{
//    Hostname: "My PC",
//    Users:    []config.User{{FullName: "Ada Lovelace"}},
//  })
//
//  cfg.Hostname         // "my-pc"
//  cfg.Users[0].Username // "ada-lovelace"
//  cfg.Users[0].HomeDir  // "/home/ada-lovelace"
//
// Normalization never fails and is idempotent: normalizing an already
// normalized value leaves it unchanged.
//
// Configurations are usually produced by evaluating a Lua script (see package
// script). Declarative configurations can be written in HCL instead and
// loaded with the Loader:
//
//  hostname = "vaelixd-pc"
//  kernels  = ["linux-zen", "linux"]
//
//  locale {
//    lang    = "en_US.UTF-8"
//    address = "en_AU.UTF-8"
//  }
//
//  user "vaelixd" {
//    groups = ["wheel"]
//  }
//
//  hooks {
//    script     = "hooks.lua"
//    post_build = "postBuild"
//  }
package config
