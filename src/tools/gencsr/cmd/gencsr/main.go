// gencsr turns a table of CSR names and numbers into the riscv64 assembly
// and Go stubs that access them.  CSR numbers are immediates in the
// instruction so every register needs its own function.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type csr struct {
	name   string
	number uint32
}

func (c csr) readOnly() bool {
	return c.number>>10 == 3
}

func (c csr) goName() string {
	return strings.ToUpper(c.name[:1]) + c.name[1:]
}

func main() {
	force := flag.Bool("f", false, "regenerate even if outputs are newer than the table")
	flag.Parse()
	if flag.NArg() < 3 {
		log.Fatalf("unable to process input, expected arguments: " +
			"gencsr <table> <out.s> <out.go>")
	}
	if !*force && !stale(flag.Arg(0), flag.Arg(1), flag.Arg(2)) {
		os.Exit(0)
	}
	table, err := readTable(flag.Arg(0))
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := writeFile(flag.Arg(1), func(wr *bufio.Writer) { genAsm(wr, table) }); err != nil {
		log.Fatalf("%v", err)
	}
	if err := writeFile(flag.Arg(2), func(wr *bufio.Writer) { genGo(wr, table) }); err != nil {
		log.Fatalf("%v", err)
	}
	os.Exit(0)
}

func stale(in string, outs ...string) bool {
	st, err := os.Stat(in)
	if err != nil {
		log.Fatalf("stat %s: %v", in, err)
	}
	lastModTime := st.ModTime()
	for _, out := range outs {
		var lastGenTime time.Time
		if st, err := os.Stat(out); err == nil {
			lastGenTime = st.ModTime()
		}
		if lastModTime.After(lastGenTime) {
			return true
		}
	}
	return false
}

func readTable(path string) ([]csr, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	var result []csr
	rd := bufio.NewScanner(fp)
	lineNo := 0
	for rd.Scan() {
		lineNo++
		line := strings.TrimSpace(rd.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s:%d: expected <name> <number>", path, lineNo)
		}
		n, err := strconv.ParseUint(fields[1], 0, 12)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %v", path, lineNo, err)
		}
		result = append(result, csr{name: fields[0], number: uint32(n)})
	}
	return result, rd.Err()
}

func writeFile(path string, body func(*bufio.Writer)) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	wr := bufio.NewWriter(out)
	body(wr)
	if err := wr.Flush(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// t0 (x5) carries the value in and out of every instruction.
const (
	encRead  = 0x22f3  // csrrs t0, csr, zero
	encWrite = 0x29073 // csrrw zero, csr, t0
	encSet   = 0x2a073 // csrrs zero, csr, t0
	encClear = 0x2b073 // csrrc zero, csr, t0
)

func genAsm(wr *bufio.Writer, table []csr) {
	wr.WriteString(warn)
	wr.WriteString("#include \"textflag.h\"\n")
	for _, c := range table {
		fmt.Fprintf(wr, readLit, c.goName(), c.goName(), c.number<<20|encRead, c.name)
		if c.readOnly() {
			continue
		}
		for _, op := range []struct {
			verb string
			enc  uint32
			asm  string
		}{
			{"write", encWrite, "csrw"},
			{"set", encSet, "csrs"},
			{"clear", encClear, "csrc"},
		} {
			fmt.Fprintf(wr, writeLit, op.verb, c.goName(), op.verb, c.goName(), c.number<<20|op.enc, op.asm, c.name)
		}
	}
}

func genGo(wr *bufio.Writer, table []csr) {
	wr.WriteString(warn)
	wr.WriteString("//go:build riscv64\n\npackage riscv\n\n")
	for _, c := range table {
		fmt.Fprintf(wr, "func read%s() uint64\n", c.goName())
		if !c.readOnly() {
			fmt.Fprintf(wr, "func write%s(v uint64)\n", c.goName())
			fmt.Fprintf(wr, "func set%s(v uint64)\n", c.goName())
			fmt.Fprintf(wr, "func clear%s(v uint64)\n", c.goName())
		}
	}
	wr.WriteString("\nfunc readCSR(csr uint16) uint64 {\n\tswitch csr {\n")
	for _, c := range table {
		fmt.Fprintf(wr, "\tcase 0x%03x:\n\t\treturn read%s()\n", c.number, c.goName())
	}
	wr.WriteString("\t}\n\tpanic(\"read of csr not in table\")\n}\n")
	for _, verb := range []string{"write", "set", "clear"} {
		fmt.Fprintf(wr, "\nfunc %sCSR(csr uint16, v uint64) {\n\tswitch csr {\n", verb)
		for _, c := range table {
			if c.readOnly() {
				continue
			}
			fmt.Fprintf(wr, "\tcase 0x%03x:\n\t\t%s%s(v)\n\t\treturn\n", c.number, verb, c.goName())
		}
		fmt.Fprintf(wr, "\t}\n\tpanic(\"%s of csr not in table\")\n}\n", verb)
	}
}

const readLit = `
// func read%s() uint64
TEXT ·read%s(SB),NOSPLIT,$0-8
	WORD	$0x%08x	// csrr t0, %s
	MOV	X5, ret+0(FP)
	RET
`

const writeLit = `
// func %s%s(v uint64)
TEXT ·%s%s(SB),NOSPLIT,$0-8
	MOV	v+0(FP), X5
	WORD	$0x%08x	// %s %s, t0
	RET
`

const warn = `// Code generated by gencsr; DO NOT EDIT.

`
